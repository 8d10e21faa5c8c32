package chain

import "errors"

var (
	// ErrRPCURLRequired indicates that rpc_url is required.
	ErrRPCURLRequired = errors.New("rpc_url is required")
	// ErrInvalidContractAddress indicates a malformed contract address.
	ErrInvalidContractAddress = errors.New("invalid contract address")
	// ErrClientNotInitialized indicates that the RPC client is not connected.
	ErrClientNotInitialized = errors.New("client not initialized")
)
