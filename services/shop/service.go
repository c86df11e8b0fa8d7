package shop

import (
	"github.com/MarcGrol/klarnacheckout/lib/mylog"
	"github.com/MarcGrol/klarnacheckout/lib/mypublisher"
	"github.com/MarcGrol/klarnacheckout/lib/mypubsub"
	"github.com/MarcGrol/klarnacheckout/lib/mystore"
	"github.com/MarcGrol/klarnacheckout/lib/mytime"
	"github.com/MarcGrol/klarnacheckout/lib/myuuid"
)

type service struct {
	publicURL   string
	basketStore mystore.Store[Basket]
	pubsub      mypubsub.PubSub
	publisher   mypublisher.Publisher
	nower       mytime.Nower
	uuider      myuuid.UUIDer
	logger      mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(publicURL string, store mystore.Store[Basket], pubsub mypubsub.PubSub, nower mytime.Nower, uuider myuuid.UUIDer, logger mylog.Logger, pub mypublisher.Publisher) *service {
	return &service{
		publicURL:   publicURL,
		basketStore: store,
		pubsub:      pubsub,
		publisher:   pub,
		nower:       nower,
		uuider:      uuider,
		logger:      logger,
	}
}
