package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleXML = `<API REQUEST_DUMP="true">
  <CONTEXT><PORT>9090</PORT><HOST>127.0.0.1</HOST>
    <CORS_ORIGINS><ORIGIN>http://a.test</ORIGIN><ORIGIN>http://b.test</ORIGIN></CORS_ORIGINS>
  </CONTEXT>
  <DB>
    <DRIVER>postgres</DRIVER><HOST>db</HOST><PORT>5432</PORT><USERNAME>sw</USERNAME>
    <NAMES SERVEWISE="servewise"/>
    <PASSWORD TYPE="env">SW_TEST_DB_PASSWORD</PASSWORD>
  </DB>
  <LESSONS><OPTION_COUNT>5</OPTION_COUNT><HARD_DELETE_POLICY>questions</HARD_DELETE_POLICY></LESSONS>
</API>`

func TestParse(t *testing.T) {
	t.Setenv("SW_TEST_DB_PASSWORD", "s3cret")
	t.Setenv("JWT_ACCESS_SECRET", "acc")
	t.Setenv("LESSON_SEED", "99")

	c, err := Parse([]byte(sampleXML))
	require.NoError(t, err)

	assert.True(t, c.RequestDump)
	assert.Equal(t, 9090, c.Context.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, c.Context.CORSOrigins)
	assert.Equal(t, "s3cret", c.DB.Password.Value)
	assert.Equal(t, "acc", c.Authentication.AccessSecret)
	assert.Equal(t, 5, c.Lessons.OptionCount)
	assert.Equal(t, 15.0, c.Lessons.DefaultPriceVariation)
	assert.Equal(t, "questions", c.Lessons.HardDeletePolicy)
	assert.Equal(t, uint64(99), c.Lessons.Seed)
	assert.Equal(t, 4, c.Lessons.FanOutWorkers)
	assert.Equal(t, 900, c.Authentication.SessionTimeout)
	assert.Contains(t, c.DB.DSN(), "password=s3cret")
	assert.Contains(t, c.DB.DSN(), "dbname=servewise")
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		xml  string
	}{
		{"malformed", `<API><CONTEXT>`},
		{"missing password variable", `<API><DB><PASSWORD TYPE="env">SW_TEST_UNSET_VARIABLE</PASSWORD></DB></API>`},
		{"unknown driver", `<API><DB><DRIVER>oracle</DRIVER></DB></API>`},
		{"unknown delete policy", `<API><LESSONS><HARD_DELETE_POLICY>everything</HARD_DELETE_POLICY></LESSONS></API>`},
		{"notify without key", `<API><NOTIFY ENABLED="true"/></API>`},
	}
	t.Setenv("SENDGRID_API_KEY", "")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.xml))
			assert.Error(t, err)
		})
	}
}

func TestSQLiteDSN(t *testing.T) {
	c, err := Parse([]byte(`<API><DB><DRIVER>sqlite</DRIVER><PATH>dev.db</PATH></DB></API>`))
	require.NoError(t, err)
	assert.Equal(t, "dev.db", c.DB.DSN())
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.xml")
	require.NoError(t, os.WriteFile(path, []byte(`<API><DB><DRIVER>sqlite</DRIVER></DB></API>`), 0o600))

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Same(t, c, GetConfig())
	assert.Equal(t, "servewise.db", c.DB.DSN())
}
