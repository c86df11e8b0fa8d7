package shopevents

const (
	TopicName              = "basket"
	basketCreateName       = TopicName + ".created"
	basketPaymentCompleted = TopicName + ".payment.completed"
)

type BasketCreated struct {
	BasketUID string
}

func (e BasketCreated) GetEventTypeName() string {
	return basketCreateName
}

func (e BasketCreated) GetAggregateName() string {
	return e.BasketUID
}

type BasketPaymentCompleted struct {
	BasketUID       string
	ProviderOrderID string
}

func (e BasketPaymentCompleted) GetEventTypeName() string {
	return basketPaymentCompleted
}

func (e BasketPaymentCompleted) GetAggregateName() string {
	return e.BasketUID
}
