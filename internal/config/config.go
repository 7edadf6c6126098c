package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

// Artifact describes one toolchain artifact to fetch from the release host.
type Artifact struct {
	Repo         string `mapstructure:"repo"`          // "owner/name" slug on the release host
	Tag          string `mapstructure:"tag"`           // release tag, or "latest"
	AssetPattern string `mapstructure:"asset_pattern"` // regexp matched against asset filenames
	File         string `mapstructure:"file"`          // filename under the data dir
}

type Config struct {
	DataDir                  string   `mapstructure:"data_dir"`
	LogLevel                 string   `mapstructure:"log_level"`
	LogFormat                string   `mapstructure:"log_format"`
	JavaPath                 string   `mapstructure:"java_path"`
	BridgePath               string   `mapstructure:"bridge_path"`
	KeystorePath             string   `mapstructure:"keystore_path"`
	ReleaseHost              string   `mapstructure:"release_host"`
	PollIntervalSeconds      int      `mapstructure:"poll_interval_seconds"`
	DeviceWaitTimeoutSeconds int      `mapstructure:"device_wait_timeout_seconds"`
	ExecTimeoutSeconds       int      `mapstructure:"exec_timeout_seconds"`
	CLI                      Artifact `mapstructure:"cli"`
	Integrations             Artifact `mapstructure:"integrations"`
	Patches                  Artifact `mapstructure:"patches"`
	JavaRuntime              Artifact `mapstructure:"java_runtime"`
}

func Default() *Config {
	return &Config{
		LogLevel:                 "info",
		LogFormat:                "text",
		BridgePath:               "adb",
		ReleaseHost:              "https://api.github.com",
		PollIntervalSeconds:      2,
		DeviceWaitTimeoutSeconds: 300,
		ExecTimeoutSeconds:       120,
		CLI: Artifact{
			Repo:         "revanced/revanced-cli",
			Tag:          "latest",
			AssetPattern: `revanced-cli.*\.jar$`,
			File:         "cli.jar",
		},
		Integrations: Artifact{
			Repo:         "revanced/revanced-integrations",
			Tag:          "latest",
			AssetPattern: `revanced-integrations.*\.apk$`,
			File:         "integrations.apk",
		},
		Patches: Artifact{
			Repo:         "revanced/revanced-patches",
			Tag:          "latest",
			AssetPattern: `revanced-patches.*\.jar$`,
			File:         "patches.jar",
		},
		// {os} and {arch} are replaced with the host platform at fetch time.
		JavaRuntime: Artifact{
			Repo:         "adoptium/temurin17-binaries",
			Tag:          "latest",
			AssetPattern: `OpenJDK17U-jre_{arch}_{os}_hotspot.*\.(zip|tar\.gz)$`,
			File:         "jre",
		},
	}
}

func Load(cfgFile string) (*Config, error) {
	cfg := Default()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("apkforge")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(configDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("APKFORGE")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}

	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir()
	}

	return cfg, nil
}

func configDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "apkforge")
	}
	return "."
}

func defaultDataDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "apkforge")
	}
	return filepath.Join(os.TempDir(), "apkforge")
}

// JavaRuntimeDir is where a managed Java runtime is unpacked when none is
// found on the host.
func (c *Config) JavaRuntimeDir() string {
	return filepath.Join(c.DataDir, "runtime")
}

// Platform returns the host os/arch pair used for runtime asset selection.
func Platform() (goos, goarch string) {
	return runtime.GOOS, runtime.GOARCH
}
