package gateway

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"plasma/internal/domain"
	"plasma/internal/infra/registry"
)

type catalogRecorder struct {
	published []string
	retracted []string
}

func recordingCatalog(rec *catalogRecorder, reject string) *catalog {
	return &catalog{
		kind:   domain.KindTool,
		logger: zap.NewNop(),
		publish: func(entry registry.Entry) error {
			if entry.Metadata.Name == reject {
				return errors.New("rejected")
			}
			rec.published = append(rec.published, entry.Metadata.Name)
			return nil
		},
		retract: func(names []string) { rec.retracted = append(rec.retracted, names...) },
	}
}

func TestCatalogSync(t *testing.T) {
	rec := &catalogRecorder{}
	c := recordingCatalog(rec, "")

	first := scan(t, calculatorRegistration(), greetingRegistration())
	c.Sync(first)
	assert.Equal(t, []string{"calculator"}, rec.published)

	c.Sync(first)
	assert.Len(t, rec.published, 1, "unchanged etag must not republish")

	c.Sync(scan(t, greetingRegistration()))
	assert.Equal(t, []string{"calculator"}, rec.retracted)

	c.Sync(nil)
	assert.Len(t, rec.published, 1)
}

func TestCatalogSync_SkipsRejectedEntries(t *testing.T) {
	rec := &catalogRecorder{}
	c := recordingCatalog(rec, "calculator")

	c.Sync(scan(t, calculatorRegistration()))
	assert.Empty(t, rec.published)
	assert.Empty(t, c.names)
}
