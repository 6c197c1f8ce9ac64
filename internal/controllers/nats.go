package controllers

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/contentpilot/cps/internal/model"
)

// GetQuotasNATS is the NATS handler for the quota standings request. The reply
// has the same shape as the quotas endpoint.
func (s Server) GetQuotasNATS(subject, reply string, request *model.QuotaRequest) {
	log := log.WithFields(logrus.Fields{"context": "quotas over nats", "subject": subject})

	ctx, cancel := context.WithTimeout(context.Background(), s.Spec.RequestTimeout)
	defer cancel()

	report := s.quotaReport(ctx)

	if err := s.NATSConn.Publish(reply, report); err != nil {
		log.Error(err)
	}
}

// ResearchNATS is the NATS handler for topic research requests. Failures are
// answered with an error envelope rather than silence so requesters do not
// have to wait out their timeout.
func (s Server) ResearchNATS(subject, reply string, request *model.ResearchRequest) {
	log := log.WithFields(logrus.Fields{"context": "research over nats", "subject": subject, "topic": request.Topic})

	ctx, cancel := context.WithTimeout(context.Background(), s.Spec.RequestTimeout)
	defer cancel()

	if strings.TrimSpace(request.Topic) == "" {
		if err := s.NATSConn.Publish(reply, &model.NATSError{Message: "a topic is required"}); err != nil {
			log.Error(err)
		}
		return
	}

	record, err := s.Research.Research(ctx, request.Topic)
	if err != nil {
		log.Error(err)
		if publishErr := s.NATSConn.Publish(reply, &model.NATSError{Message: err.Error()}); publishErr != nil {
			log.Error(publishErr)
		}
		return
	}

	if err = s.NATSConn.Publish(reply, record); err != nil {
		log.Error(err)
	}
}
