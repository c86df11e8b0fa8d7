package warmup

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/klarnacheckout/lib/mycontext"
	"github.com/MarcGrol/klarnacheckout/lib/myhttp"
	"github.com/MarcGrol/klarnacheckout/lib/mylog"
	"github.com/MarcGrol/klarnacheckout/lib/myvault"
)

type credentialsProvider interface {
	GetCredentials(c context.Context) (myvault.Credentials, error)
}

type webService struct {
	logger      mylog.Logger
	credentials credentialsProvider
}

// Use dependency injection to isolate the infrastructure and ease testing
func NewService(credentials credentialsProvider) *webService {
	logger := mylog.New("warmup")
	return &webService{
		logger:      logger,
		credentials: credentials,
	}
}

func (s webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/_ah/warmup", s.warmupPage()).Methods("GET")
}

// warmupPage makes sure the first shopper does not wait for the vault lookup
func (s *webService) warmupPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		credentials, err := s.credentials.GetCredentials(c)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		s.logger.Log(c, "", mylog.SeverityInfo, "Warmup: using credentials of merchant %s", credentials.MerchantID)

		errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{
			Message: "Successfully processed warmup request",
		})
	}
}
