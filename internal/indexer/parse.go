package indexer

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"marketScope/internal/mapping"
)

// ParseAddress converts a hex string into common.Address.
func ParseAddress(input string) (common.Address, error) {
	input = strings.TrimSpace(input)
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("invalid address: %q", input)
	}
	return common.HexToAddress(input), nil
}

// ResolveTopics converts event names into topic0 hashes. Empty input selects every event.
func ResolveTopics(mapper *mapping.Mapper, names []string) ([]common.Hash, error) {
	topics := make([]common.Hash, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		topic, ok := mapper.Topic(name)
		if !ok {
			return nil, fmt.Errorf("unknown event: %s", name)
		}
		topics = append(topics, topic)
	}
	if len(topics) == 0 {
		return mapper.Topics(), nil
	}
	return topics, nil
}
