package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/sliops/kqlframe/logging"
)

func TestNew(t *testing.T) {
	r := require.New(t)

	var buf bytes.Buffer
	logger, err := logging.New("debug", "json", &buf)
	r.NoError(err)
	r.Equal(logrus.DebugLevel, logger.GetLevel())

	logger.WithField("identity", "clusterA:db1").Debug("executing query")

	var entry map[string]any
	r.NoError(json.Unmarshal(buf.Bytes(), &entry))
	r.Equal("executing query", entry["msg"])
	r.Equal("clusterA:db1", entry["identity"])

	_, err = logging.New("loud", "text", &buf)
	r.Error(err)

	_, err = logging.New("info", "xml", &buf)
	r.Error(err)
}
