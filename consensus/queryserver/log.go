package queryserver

import "github.com/sirupsen/logrus"

var log = logrus.WithField("subsystem", "QSRV")
