// Standalone deployment of the owner login provisioning flow. The clinic
// frontend can call this Lambda directly when the API server is not exposed.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/vetsuite/clinic-crm/internal/identity"
	"github.com/vetsuite/clinic-crm/internal/notify"
	"github.com/vetsuite/clinic-crm/pkg/logging"
)

type config struct {
	authAdminBaseURL    string
	authAdminServiceKey string
	sendGridAPIKey      string
	sendGridFromEmail   string
	sendGridFromName    string
	sharedToken         string
}

func loadConfig() (config, error) {
	cfg := config{
		authAdminBaseURL:    strings.TrimSpace(os.Getenv("AUTH_ADMIN_BASE_URL")),
		authAdminServiceKey: strings.TrimSpace(os.Getenv("AUTH_ADMIN_SERVICE_KEY")),
		sendGridAPIKey:      strings.TrimSpace(os.Getenv("SENDGRID_API_KEY")),
		sendGridFromEmail:   strings.TrimSpace(os.Getenv("SENDGRID_FROM_EMAIL")),
		sendGridFromName:    strings.TrimSpace(os.Getenv("SENDGRID_FROM_NAME")),
		sharedToken:         strings.TrimSpace(os.Getenv("PROVISION_TOKEN")),
	}
	if cfg.authAdminBaseURL == "" {
		return config{}, errors.New("AUTH_ADMIN_BASE_URL is required")
	}
	if cfg.sharedToken == "" {
		return config{}, errors.New("PROVISION_TOKEN is required")
	}
	return cfg, nil
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		panic(err)
	}

	logger := logging.New(os.Getenv("LOG_LEVEL"))

	var mail notify.EmailSender
	if cfg.sendGridAPIKey != "" {
		mail = notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.sendGridAPIKey,
			FromEmail: cfg.sendGridFromEmail,
			FromName:  cfg.sendGridFromName,
		}, logger)
	} else {
		mail = notify.NewStubEmailSender(logger)
	}

	accounts := identity.NewAdminClient(cfg.authAdminBaseURL, cfg.authAdminServiceKey, logger)
	provisioner := identity.NewProvisioner(accounts, mail, logger)

	lambda.Start(func(ctx context.Context, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		return handle(ctx, cfg, provisioner, evt)
	})
}

func handle(ctx context.Context, cfg config, provisioner *identity.Provisioner, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	path := strings.TrimSpace(evt.RawPath)
	if path == "" {
		path = strings.TrimSpace(evt.RequestContext.HTTP.Path)
	}

	if path == "/health" || path == "/_health" {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusOK, Body: "ok"}, nil
	}

	method := strings.ToUpper(strings.TrimSpace(evt.RequestContext.HTTP.Method))
	if method != http.MethodPost {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusMethodNotAllowed}, nil
	}
	if path != "/generate-login" {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusNotFound}, nil
	}
	if !authorized(cfg.sharedToken, evt) {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusUnauthorized}, nil
	}

	var req identity.LoginRequest
	if err := json.Unmarshal([]byte(evt.Body), &req); err != nil {
		return jsonResponse(http.StatusBadRequest, map[string]string{"error": "invalid request body"}), nil
	}

	result, err := provisioner.GenerateLogin(ctx, req)
	if err != nil {
		return jsonResponse(http.StatusBadGateway, map[string]string{"error": "login provisioning failed"}), nil
	}

	return jsonResponse(http.StatusOK, result), nil
}

func authorized(token string, evt events.APIGatewayV2HTTPRequest) bool {
	header := evt.Headers["authorization"]
	if header == "" {
		header = evt.Headers["Authorization"]
	}
	return strings.TrimPrefix(header, "Bearer ") == token
}

func jsonResponse(status int, payload any) events.APIGatewayV2HTTPResponse {
	body, err := json.Marshal(payload)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusInternalServerError}
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}
