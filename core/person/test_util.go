package person

import (
	"context"

	"github.com/shepherdcrm/shepherd/core"
)

type serviceMock struct {
	service
}

func NewServiceMock(db core.DB, repo Repository, mailSvc core.EmailService, conf *core.Config) Service {
	return &serviceMock{
		service: service{
			db:      db,
			repo:    repo,
			mailSvc: mailSvc,
			conf:    conf,
		},
	}
}

func (svc *serviceMock) Register(ctx context.Context, churchID string, reg Registration) (Person, error) {
	prsn, err := svc.createRegistered(ctx, churchID, reg)
	if err != nil {
		return Person{}, err
	}
	if prsn.Email != "" {
		// run synchronously
		svc.sendRegistrationReceivedMail(prsn)
	}
	return prsn, nil
}
