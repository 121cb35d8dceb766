package indycrypto

import (
	"github.com/dhuseby/indy-crypto/revocation"
	"github.com/sirupsen/logrus"
)

var Logger *logrus.Logger

func init() {
	Logger = logrus.StandardLogger()
	revocation.Logger = Logger
}

// SetLogger sets the logger used by this package and its subpackages.
func SetLogger(logger *logrus.Logger) {
	Logger = logger
	revocation.Logger = logger
}
