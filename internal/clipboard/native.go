package clipboard

import (
	"context"
	"fmt"
	"sync"

	xclip "golang.design/x/clipboard"
	"go.uber.org/zap"
)

// NativeStrategy writes through the in-process clipboard API. The API needs
// a display connection, so availability is probed once and remembered;
// headless environments stay unavailable for the life of the process.
type NativeStrategy struct {
	logger   *zap.Logger
	initOnce sync.Once
	initErr  error
	init     func() error
	write    func(text string)
}

// NewNativeStrategy builds the native strategy. The probe is deferred to
// the first Available call so constructing a writer stays cheap.
func NewNativeStrategy(logger *zap.Logger) *NativeStrategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NativeStrategy{
		logger: logger,
		init:   xclip.Init,
		write: func(text string) {
			xclip.Write(xclip.FmtText, []byte(text))
		},
	}
}

func (s *NativeStrategy) Name() string { return "native" }

func (s *NativeStrategy) Available() bool {
	s.initOnce.Do(func() {
		s.initErr = s.init()
		if s.initErr != nil {
			s.logger.Debug("native clipboard unavailable", zap.Error(s.initErr))
		}
	})
	return s.initErr == nil
}

// Write pushes a single text representation. The in-process API cannot
// carry a second MIME target, so the dual-representation duty for
// structured content stays with the command strategy.
func (s *NativeStrategy) Write(ctx context.Context, text string, structured bool) error {
	if !s.Available() {
		return fmt.Errorf("native clipboard: %w", s.initErr)
	}
	s.write(text)
	return nil
}
