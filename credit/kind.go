package credit

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownStrategy = errors.New("unknown strategy")

// Kind selects a credit assignment strategy
type Kind int

const (
	// Local is plain independent Q-learning on the local reward
	Local Kind = iota
	Global
	Difference
	CFLDistance
	CFLSplit
	CFLAssign
	CFLValue
	PBRSExploration
	PBRSTargetProximity
	PBRSTargetAgent
	PBRSCustom
)

var kindTags = []string{
	Local:               "local",
	Global:              "global",
	Difference:          "difference",
	CFLDistance:         "cfl-distance",
	CFLSplit:            "cfl-split",
	CFLAssign:           "cfl-assign",
	CFLValue:            "cfl-value",
	PBRSExploration:     "pbrs-exploration",
	PBRSTargetProximity: "pbrs-target-proximity",
	PBRSTargetAgent:     "pbrs-target-agent",
	PBRSCustom:          "pbrs-custom",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindTags) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindTags[k]
}

func (k Kind) IsCFL() bool {
	return k >= CFLDistance && k <= CFLValue
}

func (k Kind) IsPBRS() bool {
	return k >= PBRSExploration && k <= PBRSCustom
}

// Deferred reports whether updates wait for the team reward of the timestep
func (k Kind) Deferred() bool {
	return k != Local
}

func ParseKind(tag string) (Kind, error) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for k, t := range kindTags {
		if t == tag {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, tag)
}

func ParseKinds(tags []string) ([]Kind, error) {
	out := make([]Kind, 0, len(tags))
	for _, tag := range tags {
		k, err := ParseKind(tag)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

func AllKinds() []Kind {
	out := make([]Kind, len(kindTags))
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

func AllTags() []string {
	out := make([]string, len(kindTags))
	copy(out, kindTags)
	return out
}
