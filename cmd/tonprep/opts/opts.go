package opts

import (
	"github.com/walteh/tonprep/pkg/config"
	"github.com/walteh/tonprep/pkg/log"
	"github.com/walteh/tonprep/pkg/status"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	Config     *config.Config
	Files      *status.Manager
	UserLogger *log.Logger
}
