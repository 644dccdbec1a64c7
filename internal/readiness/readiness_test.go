package readiness

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fixed(s Status, detail string) CheckFunc {
	return func(context.Context) (Status, string) { return s, detail }
}

func TestRunner_OverallStatus(t *testing.T) {
	tests := []struct {
		name   string
		checks []Check
		want   Status
	}{
		{"all pass", []Check{{"a", fixed(Pass, "")}, {"b", fixed(Pass, "")}}, Pass},
		{"warning wins over pass", []Check{{"a", fixed(Pass, "")}, {"b", fixed(Warn, "")}}, Warn},
		{"failure wins", []Check{{"a", fixed(Fail, "")}, {"b", fixed(Warn, "")}, {"c", fixed(Pass, "")}}, Fail},
		{"no checks", nil, Pass},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := NewRunner(zap.NewNop(), tt.checks...).Run(context.Background())
			assert.Equal(t, tt.want, rep.Status)
			assert.Len(t, rep.Results, len(tt.checks))
		})
	}
}

func TestRunner_CountsAndOrder(t *testing.T) {
	rep := NewRunner(zap.NewNop(),
		Check{"first", fixed(Pass, "ok")},
		Check{"second", fixed(Warn, "2 expired")},
		Check{"third", fixed(Fail, "down")},
		Check{"fourth", fixed(Pass, "ok")},
	).Run(context.Background())

	require.Len(t, rep.Results, 4)
	assert.Equal(t, []string{"first", "second", "third", "fourth"},
		[]string{rep.Results[0].Name, rep.Results[1].Name, rep.Results[2].Name, rep.Results[3].Name})
	assert.Equal(t, 2, rep.Passed)
	assert.Equal(t, 1, rep.Warnings)
	assert.Equal(t, 1, rep.Failures)
	assert.Equal(t, "2 expired", rep.Results[1].Detail)
	assert.False(t, rep.CheckedAt.IsZero())
}

func TestRunner_PanicAndEmptyStatusFail(t *testing.T) {
	rep := NewRunner(zap.NewNop(),
		Check{"boom", func(context.Context) (Status, string) { panic("nil map") }},
		Check{"silent", func(context.Context) (Status, string) { return "", "" }},
	).Run(context.Background())

	assert.Equal(t, Fail, rep.Results[0].Status)
	assert.Contains(t, rep.Results[0].Detail, "nil map")
	assert.Equal(t, Fail, rep.Results[1].Status)
	assert.Equal(t, 2, rep.Failures)
}

func TestRunner_TimeoutReachesCheck(t *testing.T) {
	slow := func(ctx context.Context) (Status, string) {
		select {
		case <-ctx.Done():
			return Fail, ctx.Err().Error()
		case <-time.After(time.Second):
			return Pass, ""
		}
	}
	rep := NewRunner(zap.NewNop(), Check{"slow", slow}).WithTimeout(10 * time.Millisecond).Run(context.Background())
	assert.Equal(t, Fail, rep.Status)
	assert.Equal(t, context.DeadlineExceeded.Error(), rep.Results[0].Detail)
}

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

func TestPingCheck(t *testing.T) {
	s, _ := PingCheck(pinger{})(context.Background())
	assert.Equal(t, Pass, s)

	s, detail := PingCheck(pinger{err: errors.New("connection refused")})(context.Background())
	assert.Equal(t, Fail, s)
	assert.Equal(t, "connection refused", detail)
}

func TestBrokerCheck(t *testing.T) {
	s, _ := BrokerCheck(nil)(context.Background())
	assert.Equal(t, Warn, s)

	s, _ = BrokerCheck(func() bool { return false })(context.Background())
	assert.Equal(t, Fail, s)

	s, _ = BrokerCheck(func() bool { return true })(context.Background())
	assert.Equal(t, Pass, s)
}
