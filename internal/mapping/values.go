package mapping

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// normalizeValue converts an ABI-decoded value into a JSON-stable form.
func normalizeValue(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case common.Address:
		return v.Hex(), nil
	case *big.Int:
		if v == nil {
			return nil, fmt.Errorf("nil int")
		}
		return v.String(), nil
	case bool:
		return v, nil
	case string:
		return v, nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case common.Hash:
		return v.Hex(), nil
	case [32]byte:
		return hexutil.Encode(v[:]), nil
	case []byte:
		return hexutil.Encode(v), nil
	case []string:
		out := make([]interface{}, 0, len(v))
		for _, item := range v {
			out = append(out, item)
		}
		return out, nil
	case []common.Address:
		out := make([]interface{}, 0, len(v))
		for _, item := range v {
			out = append(out, item.Hex())
		}
		return out, nil
	case []*big.Int:
		out := make([]interface{}, 0, len(v))
		for _, item := range v {
			if item == nil {
				return nil, fmt.Errorf("nil int in array")
			}
			out = append(out, item.String())
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", value)
	}
}
