package contract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// ErrMarketNotFound is returned when the contract reverts because the market id is unknown.
var ErrMarketNotFound = errors.New("market does not exist")

const marketNotFoundReason = "market does not exist"

// DecodeError reports a contract return value that does not match the pinned ABI.
type DecodeError struct {
	Method string
	Field  string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("decode %s: %v", e.Method, e.Err)
	}
	return fmt.Sprintf("decode %s.%s: %v", e.Method, e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func decodeErr(method, field string, err error) error {
	return &DecodeError{Method: method, Field: field, Err: err}
}

// classifyCallError maps known revert reasons onto sentinel errors.
func classifyCallError(method string, err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(strings.ToLower(revertReason(err)), marketNotFoundReason) {
		return fmt.Errorf("call %s: %w", method, ErrMarketNotFound)
	}
	return fmt.Errorf("call %s: %w", method, err)
}

func revertReason(err error) string {
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if hexData, ok := dataErr.ErrorData().(string); ok {
			if data, decodeErr := hexutil.Decode(hexData); decodeErr == nil {
				if reason, unpackErr := abi.UnpackRevert(data); unpackErr == nil {
					return reason
				}
			}
		}
	}
	return err.Error()
}
