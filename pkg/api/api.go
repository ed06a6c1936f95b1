package api

//go:generate go run github.com/oapi-codegen/oapi-codegen/v2/cmd/oapi-codegen@v2.5.0 --config=cfg.yaml openapi.yaml

// AccountIdHeader carries the authenticated account set by the upstream authenticator.
const AccountIdHeader = "X-Account-Id"

// MovementOriginHeader marks movements issued by the transfer service. Like
// AccountIdHeader, the upstream authenticator strips it from client traffic.
const MovementOriginHeader = "X-Movement-Origin"
