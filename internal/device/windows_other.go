//go:build !windows

package device

import (
	"fmt"
	"runtime"

	"github.com/dshills/macrokit/internal/logging"
)

func openWindows(*logging.Logger) (Source, Sink, error) {
	return nil, nil, fmt.Errorf("%w: windows backend on %s", ErrUnsupported, runtime.GOOS)
}
