package config

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/pem"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v7"
	"github.com/poofware/rental-service/internal/utils"
)

type Config struct {
	OrganizationName string
	AppName          string
	AppPort          string
	AppUrl           string
	Env              string

	// Database / cache
	DBUrl    string
	RedisURL string

	// Twilio / SendGrid for booking notifications
	TwilioAccountSID string
	TwilioAuthToken  string
	SendGridAPIKey   string

	// Auth: tokens are minted by the auth service, we only verify them
	RSAPublicKey *rsa.PublicKey

	// LaunchDarkly flags
	LDFlag_SeedDbWithTestData   bool
	LDFlag_CORSHighSecurity     bool
	LDFlag_SendgridSandboxMode  bool
	LDFlag_SendgridFromEmail    string
	LDFlag_TwilioFromPhone      string
	LDFlag_BookingNotifications bool
}

const (
	OrganizationName    = utils.OrganizationName
	LDConnectionTimeout = 5 * time.Second

	defaultAppName      = "rental-service"
	defaultLDServerKind = "service"
	defaultFromEmail    = "no-reply@poofstays.com"
	defaultFromPhone    = "+10005550006"
)

// build-time overrides
var (
	AppName             string
	LDServerContextKey  string
	LDServerContextKind string
)

// flagSource resolves feature flags either from LaunchDarkly or, when no
// SDK key is configured, from LDFLAG_<KEY> environment variables.
type flagSource interface {
	Bool(key string, def bool) bool
	String(key string, def string) string
	Close()
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		utils.Logger.Debug("No .env file loaded; relying on process environment")
	}
	if AppName == "" {
		AppName = defaultAppName
	}
	if LDServerContextKey == "" {
		LDServerContextKey = AppName
	}
	if LDServerContextKind == "" {
		LDServerContextKind = defaultLDServerKind
	}

	utils.Logger.Info("Loading config for app: ", AppName)

	env := mustEnv("ENV")
	appPort := mustEnv("APP_PORT")
	appUrl := mustEnv("APP_URL")
	dbURL := mustEnv("DB_URL")

	pubKey, err := parseRSAPublicKey(mustEnv("RSA_PUBLIC_KEY_BASE64"))
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to parse RSA public key")
	}

	flags := newFlagSource(os.Getenv("LD_SDK_KEY"))
	defer flags.Close()

	seedDbWithTestDataFlag := flags.Bool("seed_db_with_test_data", false)
	corsHighSecurityFlag := flags.Bool("cors_high_security", env != "dev")
	sgSandboxFlag := flags.Bool("sendgrid_sandbox_mode", env != "prod")
	bookingNotificationsFlag := flags.Bool("booking_notifications", true)

	sgFromFlag := flags.String("sendgrid_from_email", "")
	if sgFromFlag == "" {
		utils.Logger.Warnf("sendgrid_from_email flag is empty, defaulting to %s", defaultFromEmail)
		sgFromFlag = defaultFromEmail
	}
	twilioFromFlag := flags.String("twilio_from_phone", "")
	if twilioFromFlag == "" {
		utils.Logger.Warnf("twilio_from_phone flag is empty, defaulting to %s", defaultFromPhone)
		twilioFromFlag = defaultFromPhone
	}

	return &Config{
		OrganizationName:            OrganizationName,
		AppName:                     AppName,
		AppPort:                     appPort,
		AppUrl:                      appUrl,
		Env:                         env,
		DBUrl:                       dbURL,
		RedisURL:                    os.Getenv("REDIS_URL"),
		TwilioAccountSID:            os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:             os.Getenv("TWILIO_AUTH_TOKEN"),
		SendGridAPIKey:              os.Getenv("SENDGRID_API_KEY"),
		RSAPublicKey:                pubKey,
		LDFlag_SeedDbWithTestData:   seedDbWithTestDataFlag,
		LDFlag_CORSHighSecurity:     corsHighSecurityFlag,
		LDFlag_SendgridSandboxMode:  sgSandboxFlag,
		LDFlag_SendgridFromEmail:    sgFromFlag,
		LDFlag_TwilioFromPhone:      twilioFromFlag,
		LDFlag_BookingNotifications: bookingNotificationsFlag,
	}
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		utils.Logger.Fatalf("%s env var is missing", key)
	}
	return v
}

func parseRSAPublicKey(b64 string) (*rsa.PublicKey, error) {
	pubPEM, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	if block, _ := pem.Decode(pubPEM); block == nil {
		utils.Logger.Fatal("Failed to decode PEM block for public key")
	}
	return jwt.ParseRSAPublicKeyFromPEM(pubPEM)
}

func newFlagSource(sdkKey string) flagSource {
	if sdkKey == "" {
		utils.Logger.Info("LD_SDK_KEY not set; reading feature flags from LDFLAG_* env vars")
		return envFlags{}
	}

	client, err := ld.MakeClient(sdkKey, LDConnectionTimeout)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to create LaunchDarkly client")
	}
	if !client.Initialized() {
		client.Close()
		utils.Logger.Fatal("LaunchDarkly client failed to initialize")
	}
	return &ldFlags{
		client: client,
		ctx:    ldcontext.NewWithKind(ldcontext.Kind(LDServerContextKind), LDServerContextKey),
	}
}

type ldFlags struct {
	client *ld.LDClient
	ctx    ldcontext.Context
}

func (f *ldFlags) Bool(key string, def bool) bool {
	v, err := f.client.BoolVariation(key, f.ctx, def)
	if err != nil {
		utils.Logger.WithError(err).Fatalf("Error retrieving %s flag", key)
	}
	utils.Logger.Debugf("%s flag: %t", key, v)
	return v
}

func (f *ldFlags) String(key string, def string) string {
	v, err := f.client.StringVariation(key, f.ctx, def)
	if err != nil {
		utils.Logger.WithError(err).Fatalf("Error retrieving %s flag", key)
	}
	utils.Logger.Debugf("%s flag: %s", key, v)
	return v
}

func (f *ldFlags) Close() { _ = f.client.Close() }

type envFlags struct{}

func envFlagName(key string) string {
	return "LDFLAG_" + strings.ToUpper(key)
}

func (envFlags) Bool(key string, def bool) bool {
	raw := os.Getenv(envFlagName(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		utils.Logger.Warnf("Invalid %s=%q, using default %t", envFlagName(key), raw, def)
		return def
	}
	utils.Logger.Debugf("%s flag: %t", key, v)
	return v
}

func (envFlags) String(key string, def string) string {
	if v := os.Getenv(envFlagName(key)); v != "" {
		return v
	}
	return def
}

func (envFlags) Close() {}
