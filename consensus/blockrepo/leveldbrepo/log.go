package leveldbrepo

import "github.com/sirupsen/logrus"

var log = logrus.WithField("subsystem", "BDBL")
