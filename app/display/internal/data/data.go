package data

import (
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/company_radar/app/company_radar/pkg/session"
)

// Data 服务进程内唯一的调研会话，不做持久化
type Data struct {
	sess *session.Session
}

func NewData(sess *session.Session, logger log.Logger) (*Data, func(), error) {
	cleanup := func() {
		log.NewHelper(logger).Info("clearing the research session")
		sess.Clear()
	}
	return &Data{sess: sess}, cleanup, nil
}
