package services

import (
	"time"

	"billnudge/internal/models"
)

// Option customizes a service.
type Option func(*options)

type options struct {
	clock func() time.Time
	loc   *time.Location
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLocation sets the timezone used for calendar dates and reminder times.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.loc = loc
		}
	}
}

func newOptions(opts []Option) options {
	o := options{clock: time.Now, loc: time.UTC}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) now() time.Time {
	return o.clock().In(o.loc)
}

func (o options) today() models.Date {
	return models.DateOf(o.now())
}
