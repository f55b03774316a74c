package notify

import (
	"fmt"
	"strings"

	"github.com/gravitlabs/storefront/config"
	"github.com/gravitlabs/storefront/internal/analytics"
	"github.com/gravitlabs/storefront/pkg/common"
	"github.com/guonaihong/gout"
	jsoniter "github.com/json-iterator/go"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Sink delivers a batch of advisories to one channel.
type Sink interface {
	Name() string
	Send(advisories []analytics.Advisory) error
}

// Dispatcher fans a digest out to every configured sink on a small
// worker pool. Unconfigured channels are simply absent.
type Dispatcher struct {
	sinks []Sink
	pool  *ants.Pool
}

func NewDispatcher(cfg config.NotifyConfig) (*Dispatcher, error) {
	pool, err := ants.NewPool(4)
	if err != nil {
		return nil, err
	}
	d := &Dispatcher{pool: pool}
	if cfg.WebhookURL != "" {
		d.sinks = append(d.sinks, &webhookSink{url: cfg.WebhookURL})
	}
	if cfg.SmtpHost != "" && cfg.MailTo != "" {
		d.sinks = append(d.sinks, &mailSink{cfg: cfg})
	}
	return d, nil
}

// Enabled reports whether any channel is configured.
func (d *Dispatcher) Enabled() bool { return len(d.sinks) > 0 }

// Dispatch sends the advisories to all sinks. Failures are logged per
// sink and never retried; the next digest run is the retry.
func (d *Dispatcher) Dispatch(advisories []analytics.Advisory) {
	if len(advisories) == 0 {
		return
	}
	for _, sink := range d.sinks {
		s := sink
		err := d.pool.Submit(func() {
			if err := s.Send(advisories); err != nil {
				zap.L().Error("advisory delivery failed",
					zap.String("sink", s.Name()), zap.Error(err))
				return
			}
			zap.L().Info("advisory digest delivered",
				zap.String("sink", s.Name()), zap.Int("count", len(advisories)))
		})
		if err != nil {
			zap.L().Error("advisory dispatch rejected", zap.String("sink", s.Name()), zap.Error(err))
		}
	}
}

// Release shuts the worker pool down.
func (d *Dispatcher) Release() {
	d.pool.Release()
}

type webhookSink struct {
	url string
}

func (s *webhookSink) Name() string { return "webhook" }

// Send posts the digest as JSON. The body is signed with the shared
// secret salt so receivers can verify origin.
func (s *webhookSink) Send(advisories []analytics.Advisory) error {
	body, err := jsoniter.Marshal(gout.H{"advisories": advisories})
	if err != nil {
		return err
	}
	return gout.POST(s.url).
		SetHeader(gout.H{
			"Content-Type":      "application/json",
			"X-Storefront-Sign": common.Sha256HashWithSalt(string(body), common.GetSecretSalt()),
		}).
		SetBody(body).
		Do()
}

type mailSink struct {
	cfg config.NotifyConfig
}

func (s *mailSink) Name() string { return "mail" }

func (s *mailSink) Send(advisories []analytics.Advisory) error {
	var b strings.Builder
	for _, a := range advisories {
		fmt.Fprintf(&b, "[%s] %s\n%s\n\n", strings.ToUpper(a.Priority), a.Title, a.Detail)
	}

	m := gomail.NewMessage()
	from := s.cfg.MailFrom
	if from == "" {
		from = s.cfg.SmtpUser
	}
	m.SetHeader("From", from)
	m.SetHeader("To", s.cfg.MailTo)
	m.SetHeader("Subject", fmt.Sprintf("Storefront digest: %d advisories", len(advisories)))
	m.SetBody("text/plain", b.String())

	d := gomail.NewDialer(s.cfg.SmtpHost, s.cfg.SmtpPort, s.cfg.SmtpUser, s.cfg.SmtpPasswd)
	return d.DialAndSend(m)
}
