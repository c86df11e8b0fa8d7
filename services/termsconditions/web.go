package termsconditions

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/klarnacheckout/lib/mycontext"
	"github.com/MarcGrol/klarnacheckout/lib/myerrors"
	"github.com/MarcGrol/klarnacheckout/lib/myhttp"
	"github.com/MarcGrol/klarnacheckout/lib/mylog"
	"github.com/MarcGrol/klarnacheckout/lib/mypublisher"
)

type webService struct {
	logger    mylog.Logger
	publisher mypublisher.Publisher
}

// Use dependency injection to isolate the infrastructure and ease testing
func NewService(pub mypublisher.Publisher) *webService {
	logger := mylog.New("termsconditions")

	return &webService{
		logger:    logger,
		publisher: pub,
	}
}

// RegisterEndpoints serves the page that Klarna links to from its checkout
func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/terms", s.getTermsAndConditions()).Methods("GET")
	router.HandleFunc("/terms", s.acceptTermsAndConditions()).Methods("POST")

	return s.Subscribe(c)
}

func (s *webService) Subscribe(c context.Context) error {
	err := s.publisher.CreateTopic(c, TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", TopicName, err)
	}

	return nil
}

//go:embed templates
var templateFolder embed.FS
var (
	termsConditionsPageTemplate *template.Template
)

func init() {
	termsConditionsPageTemplate = template.Must(template.ParseFS(templateFolder, "templates/termsconditions.html"))
}

func (s *webService) getTermsAndConditions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		err := termsConditionsPageTemplate.Execute(w, struct {
			Version string
		}{
			Version: Version,
		})
		if err != nil {
			responseWriter.WriteError(c, w, 1, myerrors.NewInternalError(err))
			return
		}
	}
}

func (s *webService) acceptTermsAndConditions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		err := r.ParseForm()
		if err != nil {
			responseWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(err))
			return
		}

		email := r.FormValue("email")
		if email == "" {
			responseWriter.WriteError(c, w, 2, myerrors.NewInvalidInputErrorf("missing email"))
			return
		}

		err = s.publisher.Publish(c, TopicName, TermsConditionsAccepted{
			EmailAddress: email,
			Version:      Version,
		})
		if err != nil {
			responseWriter.WriteError(c, w, 3, myerrors.NewInternalError(err))
			return
		}

		s.logger.Log(c, email, mylog.SeverityInfo, "Terms and conditions %s accepted", Version)

		http.Redirect(w, r, "/terms", http.StatusSeeOther)
	}
}
