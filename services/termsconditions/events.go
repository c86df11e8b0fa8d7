package termsconditions

const (
	TopicName    = "termsconditions"
	acceptedName = TopicName + ".accepted"

	// Version of the terms shown at /terms
	Version = "1.0.0"
)

// TermsConditionsAccepted is published when a shopper agrees with a version of the terms
type TermsConditionsAccepted struct {
	EmailAddress string
	Version      string
}

func (e TermsConditionsAccepted) GetEventTypeName() string {
	return acceptedName
}

func (e TermsConditionsAccepted) GetAggregateName() string {
	return e.EmailAddress
}
