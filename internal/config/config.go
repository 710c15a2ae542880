// Package config handles input from etc/main.toml and the process environment.
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every generic environment override, e.g. MIRRORBALL_STORE_DRIVER.
	EnvPrefix = "MIRRORBALL"

	// EnvConfigJSON holds a JSON document merged over the file configuration.
	EnvConfigJSON = "MIRRORBALL_CONFIG_JSON"

	maxPresignExpiry = 7 * 24 * time.Hour
)

// envAliases keeps the deployment variable names the container platform already sets.
var envAliases = map[string][]string{ //nolint:gochecknoglobals
	"webserver.port":        {"PORT"},
	"aws.region":            {"AWS_REGION"},
	"aws.bucketname":        {"BUCKET_NAME"},
	"aws.cloudfrontdomain":  {"CLOUDFRONT_DOMAIN"},
	"store.imagetablename":  {"IMAGE_TABLE_NAME", "TABLE_NAME"},
	"store.configtablename": {"CONFIG_TABLE_NAME"},
	"auth.userpoolid":       {"USER_POOL_ID"},
	"auth.clientid":         {"USER_POOL_CLIENT_ID"},
	"auth.domain":           {"COGNITO_DOMAIN"},
}

// ReadConfig from config directory.
// A missing main.toml is not an error: container deployments configure everything through the environment.
func ReadConfig(path string) (Config, error) {
	var (
		c   Config
		err error
	)

	if path == "" {
		path = "./etc/"
	}

	v := viper.New()
	v.SetConfigName("main")
	v.SetConfigType("toml")
	v.AddConfigPath(path)

	setDefaults(v)

	if err = bindEnv(v); err != nil {
		return Config{}, err
	}

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, errors.Wrap(err, "failed to read main config file")
		}
	}

	if err = v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode main config")
	}

	// override it from env
	if configAsJSON := os.Getenv(EnvConfigJSON); configAsJSON != "" {
		c, err = decodeAndMergeConfig(c, configAsJSON)
		if err != nil {
			return c, err
		}
	}

	return c, validate(&c)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("title", "MirrorBall")

	v.SetDefault("webserver.port", 8080)           //nolint:mnd
	v.SetDefault("webserver.shutdowntime", 5)      //nolint:mnd
	v.SetDefault("webserver.readbuffersize", 8192) //nolint:mnd
	v.SetDefault("webserver.url", "http://localhost:8080")
	v.SetDefault("webserver.frontendurl", "http://localhost:5173")
	v.SetDefault("webserver.alloworigins", "*")
	v.SetDefault("webserver.ratelimit.enabled", false)
	v.SetDefault("webserver.ratelimit.max", 30) //nolint:mnd
	v.SetDefault("webserver.ratelimit.expiration", time.Minute)

	v.SetDefault("log.loglevel", "info")
	v.SetDefault("log.appname", "mirrorball")
	v.SetDefault("log.servicename", "api")
	v.SetDefault("log.console.enabled", true)

	v.SetDefault("aws.region", "us-west-2")
	v.SetDefault("aws.bucketname", "")
	v.SetDefault("aws.cloudfrontdomain", "")
	v.SetDefault("aws.endpoint", "")

	v.SetDefault("store.driver", DriverDynamoDB)
	v.SetDefault("store.imagetablename", "")
	v.SetDefault("store.configtablename", "")
	v.SetDefault("store.titleindexname", "TitleIndex")

	v.SetDefault("db.path", "mirrorball.db")
	v.SetDefault("db.sslmode", "disable")

	v.SetDefault("auth.userpoolid", "")
	v.SetDefault("auth.clientid", "")
	v.SetDefault("auth.domain", "")
	v.SetDefault("auth.scopes", []string{"openid", "email", "profile"})
	v.SetDefault("auth.defaultgroup", "dev")
	v.SetDefault("auth.configcachettl", time.Minute)

	v.SetDefault("upload.presignexpiry", 15*time.Minute) //nolint:mnd
	v.SetDefault("upload.probedimensions", true)
	v.SetDefault("upload.probebytes", 64*1024) //nolint:mnd
}

func bindEnv(v *viper.Viper) error {
	replacer := strings.NewReplacer(".", "_")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	for key, aliases := range envAliases {
		names := append([]string{key, EnvPrefix + "_" + strings.ToUpper(replacer.Replace(key))}, aliases...)
		if err := v.BindEnv(names...); err != nil {
			return errors.Wrapf(err, "failed to bind env for %s", key)
		}
	}

	return nil
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read json config override")
	}

	return c, nil
}

// DumpConfig config as TOML String.
func DumpConfig(c *Config) (string, error) {
	var buffer bytes.Buffer
	t := toml.NewEncoder(&buffer)

	if err := t.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c *Config) (string, error) {
	var buffer bytes.Buffer
	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// validate the settings the process can not start without.
// Bucket, tables and user pool are checked per request so a partial deployment still answers health checks.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	switch c.Store.Driver {
	case DriverDynamoDB, DriverSQLite, DriverMySQL, DriverPostgres:
	case "":
		c.Store.Driver = DriverDynamoDB
	default:
		return errors.Wrapf(ErrUnknownStoreDriver, "%s: %q", invalidErrMessage, c.Store.Driver)
	}

	if c.Upload.PresignExpiry > maxPresignExpiry {
		return errors.Wrap(ErrPresignExpiryTooLong, invalidErrMessage)
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = 5 // set default of 5 seconds
	}

	if c.Auth.ConfigCacheTTL == 0 {
		c.Auth.ConfigCacheTTL = time.Minute
	}

	if c.Upload.PresignExpiry == 0 {
		c.Upload.PresignExpiry = 15 * time.Minute //nolint:mnd
	}

	return nil
}
