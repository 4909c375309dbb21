package logger_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/vse/abbc3-migrate/internal/errors"
	"github.com/vse/abbc3-migrate/internal/logger"
)

func TestGormLoggerAdapterTrace(t *testing.T) {
	t.Parallel()

	sqlFn := func() (string, int64) { return "SELECT MAX(bbcode_id) FROM phpbb_bbcodes", 1 }

	tests := []struct {
		name      string
		level     logger.LogLevel
		begin     time.Time
		threshold time.Duration
		err       error
		want      string
	}{
		{"normal query at trace", logger.LogLevelTrace, time.Now(), 0, nil, "sql query"},
		{"normal query hidden at info", logger.LogLevelInfo, time.Now(), 0, nil, ""},
		{"query error", logger.LogLevelInfo, time.Now(), 0, errors.NewStd("no such table"), "query error"},
		{"record not found is not an error", logger.LogLevelInfo, time.Now(), 0, gorm.ErrRecordNotFound, ""},
		{"slow query", logger.LogLevelInfo, time.Now().Add(-time.Second), 100 * time.Millisecond, nil, "slow query"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			buf := &bytes.Buffer{}
			adapter := logger.NewGormLoggerAdapter(logger.NewSlogLogger(buf, tt.level, time.UTC), tt.threshold)
			adapter.Trace(context.Background(), tt.begin, sqlFn, tt.err)

			if tt.want == "" {
				assert.Empty(t, buf.String())
				return
			}
			assert.Contains(t, buf.String(), tt.want)
			assert.Contains(t, buf.String(), "phpbb_bbcodes")
		})
	}
}

func TestGormLoggerAdapterLogModeReturnsSelf(t *testing.T) {
	t.Parallel()

	adapter := logger.NewGormLoggerAdapter(nil, 0)
	assert.Same(t, adapter, adapter.LogMode(0))
}
