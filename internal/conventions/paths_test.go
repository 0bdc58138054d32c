package conventions_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/jobwatch/internal/conventions"
)

func TestPaths(t *testing.T) {
	assert.Equal(t, "/home/ada/.jobwatch/config.yaml", conventions.ConfigPath("/home/ada/.jobwatch"))
	assert.Equal(t, "/home/ada/.jobwatch/jobwatch.db", conventions.JournalPath("/home/ada/.jobwatch"))
}
