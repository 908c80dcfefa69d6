package cryptosecp256k1

import "github.com/sirupsen/logrus"

var log = logrus.WithField("subsystem", "CRPT")
