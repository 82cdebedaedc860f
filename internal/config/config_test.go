package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"rankguesser-server/internal/util"
)

func TestInstance(t *testing.T) {
	clear1 := util.SetEnv("RG_CONFIG_FILE", "testdata/config.yaml")
	defer clear1()
	clear2 := util.SetEnv("RG_JWT_PRIVATE_KEY", "private2.key")
	defer clear2()

	a := assert.New(t)
	a.NoError(Load())
	cfg := Instance()
	a.Equal("debug", cfg.Log.Level)
	a.Equal("public.pem", cfg.JWT.PublicKey)
	a.Equal("private2.key", cfg.JWT.PrivateKey)
	a.Equal(10, cfg.StartGameDelay)
	a.Equal(30, cfg.GuessTimeout)
	a.Equal(6, cfg.RoomCodeLength)

	// ensure that it's only loaded once
	_ = os.Setenv("RG_JWT_PRIVATE_KEY", "private3.key")
	// ensure we aren't using a pointer
	cfg.JWT.PrivateKey = "bad"
	cfg = Instance()
	a.Equal("private2.key", cfg.JWT.PrivateKey)
}

func TestDefaults(t *testing.T) {
	clear1 := util.SetEnv("RG_CONFIG_FILE", "testdata/does-not-exist.yaml")
	defer clear1()

	a := assert.New(t)
	a.NoError(Load())
	cfg := Instance()
	a.Equal(5, cfg.StartGameDelay)
	a.Equal(45, cfg.GuessTimeout)
	a.Equal(4, cfg.RoomCodeLength)
	a.False(cfg.Log.DisableAccessLogs)
}
