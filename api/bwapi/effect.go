package bwapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Discriminant of a consume effect, sent as the numeric "type" field.
//
// Values follow declaration order starting at 0 and form a closed, versioned set.
// Reordering or inserting constants changes the wire contract.
type EffectType uint8

const (
	EffectUnknown EffectType = iota
	EffectRestoreHealth
	EffectRestoreEnergy
	EffectRestoreSpirit
	EffectBuffHealth
	EffectBuffEnergy
	EffectBuffSpirit
	EffectDecreaseHealth
	EffectDecreaseEnergy
	EffectDecreaseSpirit
	EffectDebuffHealth
	EffectDebuffEnergy
	EffectDebuffSpirit
	EffectAddCredits
	EffectRemoveCredits
	EffectAcceptMission
	EffectAddItem
)

const EFFECT_TAG = "type"

var effectTypeNames = [...]string{
	EffectUnknown:        "Unknown",
	EffectRestoreHealth:  "RestoreHealth",
	EffectRestoreEnergy:  "RestoreEnergy",
	EffectRestoreSpirit:  "RestoreSpirit",
	EffectBuffHealth:     "BuffHealth",
	EffectBuffEnergy:     "BuffEnergy",
	EffectBuffSpirit:     "BuffSpirit",
	EffectDecreaseHealth: "DecreaseHealth",
	EffectDecreaseEnergy: "DecreaseEnergy",
	EffectDecreaseSpirit: "DecreaseSpirit",
	EffectDebuffHealth:   "DebuffHealth",
	EffectDebuffEnergy:   "DebuffEnergy",
	EffectDebuffSpirit:   "DebuffSpirit",
	EffectAddCredits:     "AddCredits",
	EffectRemoveCredits:  "RemoveCredits",
	EffectAcceptMission:  "AcceptMission",
	EffectAddItem:        "AddItem",
}

func (t EffectType) String() string {
	if int(t) < len(effectTypeNames) {
		return effectTypeNames[t]
	}

	return "EffectType(" + strconv.Itoa(int(t)) + ")"
}

// Every declared discriminant, in wire order.
func EffectTypes() []EffectType {
	types := make([]EffectType, len(effectTypeNames))
	for i := range types {
		types[i] = EffectType(i)
	}

	return types
}

// One variant of the closed consume effect set. Switch on the concrete type or on Type().
type ConsumeEffect interface {
	Type() EffectType
}

type MinMax struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Midpoint of the range, truncated toward zero.
func (m MinMax) Average() int {
	return (m.Min + m.Max) / 2
}

type UnknownEffect struct{}

// Restores, buffs, decreases or debuffs health, energy or spirit by a random amount in range.
type StatEffect struct {
	Kind EffectType `json:"-"`
	MinMax
}

type AddCreditsEffect struct {
	Min             int  `json:"min"`
	Max             int  `json:"max"`
	WorthMultiplier *int `json:"worthMultiplier"`
}

func (e AddCreditsEffect) Average() int {
	return (e.Min + e.Max) / 2
}

type RemoveCreditsEffect struct {
	MinMax
}

type AcceptMissionEffect struct {
	MissionName string `json:"missionName"`
}

type AddItemEffect struct {
	Chance      float32 `json:"chance"`
	ItemName    string  `json:"itemName"`
	QualityMin  uint8   `json:"qualityMin"`
	QualityMax  uint8   `json:"qualityMax"`
	QuantityMin int     `json:"quantityMin"`
	QuantityMax int     `json:"quantityMax"`
}

func (UnknownEffect) Type() EffectType       { return EffectUnknown }
func (e StatEffect) Type() EffectType        { return e.Kind }
func (AddCreditsEffect) Type() EffectType    { return EffectAddCredits }
func (RemoveCreditsEffect) Type() EffectType { return EffectRemoveCredits }
func (AcceptMissionEffect) Type() EffectType { return EffectAcceptMission }
func (AddItemEffect) Type() EffectType       { return EffectAddItem }

type effectDecoder func(data []byte) (ConsumeEffect, error)

var addItemFields = []string{"chance", "itemName", "qualityMin", "qualityMax", "quantityMin", "quantityMax"}

// Maps each discriminant to the constructor for its variant. Indexed by EffectType.
var effectDecoders = [...]effectDecoder{
	EffectUnknown:        func([]byte) (ConsumeEffect, error) { return UnknownEffect{}, nil },
	EffectRestoreHealth:  decodeStat(EffectRestoreHealth),
	EffectRestoreEnergy:  decodeStat(EffectRestoreEnergy),
	EffectRestoreSpirit:  decodeStat(EffectRestoreSpirit),
	EffectBuffHealth:     decodeStat(EffectBuffHealth),
	EffectBuffEnergy:     decodeStat(EffectBuffEnergy),
	EffectBuffSpirit:     decodeStat(EffectBuffSpirit),
	EffectDecreaseHealth: decodeStat(EffectDecreaseHealth),
	EffectDecreaseEnergy: decodeStat(EffectDecreaseEnergy),
	EffectDecreaseSpirit: decodeStat(EffectDecreaseSpirit),
	EffectDebuffHealth:   decodeStat(EffectDebuffHealth),
	EffectDebuffEnergy:   decodeStat(EffectDebuffEnergy),
	EffectDebuffSpirit:   decodeStat(EffectDebuffSpirit),
	EffectAddCredits:     decodePayload[AddCreditsEffect]("min", "max"),
	EffectRemoveCredits:  decodePayload[RemoveCreditsEffect]("min", "max"),
	EffectAcceptMission:  decodePayload[AcceptMissionEffect]("missionName"),
	EffectAddItem:        decodePayload[AddItemEffect](addItemFields...),
}

// A variant's payload fields failed to decode.
type EffectPayloadError struct {
	Type EffectType
	Err  error
}

func (e *EffectPayloadError) Error() string {
	return fmt.Sprintf("invalid %s payload: %v", e.Type, e.Err)
}

func (e *EffectPayloadError) Unwrap() error { return e.Err }

var ErrMissingEffectTag = errors.New("missing field `" + EFFECT_TAG + "`")

var ErrMissingPayloadField = errors.New("missing field")

// Fails when any of the named keys is absent or null in the effect object.
func requireFields(data []byte, names ...string) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	for _, name := range names {
		if v, ok := fields[name]; !ok || string(v) == "null" {
			return fmt.Errorf("%w `%s`", ErrMissingPayloadField, name)
		}
	}

	return nil
}

// Decoder for variant P whose listed keys must all be present.
func decodePayload[P ConsumeEffect](required ...string) effectDecoder {
	return func(data []byte) (ConsumeEffect, error) {
		var payload P
		if err := requireFields(data, required...); err != nil {
			return nil, &EffectPayloadError{Type: payload.Type(), Err: err}
		}

		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, &EffectPayloadError{Type: payload.Type(), Err: err}
		}

		return payload, nil
	}
}

func decodeStat(kind EffectType) effectDecoder {
	return func(data []byte) (ConsumeEffect, error) {
		if err := requireFields(data, "min", "max"); err != nil {
			return nil, &EffectPayloadError{Type: kind, Err: err}
		}

		var mm MinMax
		if err := json.Unmarshal(data, &mm); err != nil {
			return nil, &EffectPayloadError{Type: kind, Err: err}
		}

		return StatEffect{Kind: kind, MinMax: mm}, nil
	}
}

// Decodes a single effect object. The "type" field selects the variant and the
// sibling fields of the same object are decoded into that variant's payload.
func DecodeConsumeEffect(data []byte) (ConsumeEffect, error) {
	var tagged struct {
		Tag json.RawMessage `json:"type"`
	}

	if err := json.Unmarshal(data, &tagged); err != nil {
		return nil, err
	}

	if tagged.Tag == nil {
		return nil, ErrMissingEffectTag
	}

	value, err := strconv.ParseUint(string(tagged.Tag), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("unexpected `%s`, expected uint", tagged.Tag)
	}

	if value >= uint64(len(effectDecoders)) {
		return nil, &UnknownVariantError{Value: value, Expected: EffectTypes()}
	}

	return effectDecoders[value](data)
}

// A list of consume effects that decodes each element through [DecodeConsumeEffect].
type ConsumeEffects []ConsumeEffect

func (c *ConsumeEffects) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw == nil {
		*c = nil
		return nil
	}

	effects := make(ConsumeEffects, 0, len(raw))
	for i, r := range raw {
		effect, err := DecodeConsumeEffect(r)
		if err != nil {
			return fmt.Errorf("consume effect %d: %w", i, err)
		}

		effects = append(effects, effect)
	}

	*c = effects
	return nil
}

// Returns every effect of variant P.
func EffectsOf[P ConsumeEffect](effects []ConsumeEffect) []P {
	var out []P
	for _, e := range effects {
		if p, ok := e.(P); ok {
			out = append(out, p)
		}
	}

	return out
}
