package bwapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func TestDecodeEveryDiscriminant(t *testing.T) {
	stats := []EffectType{
		EffectRestoreHealth, EffectRestoreEnergy, EffectRestoreSpirit,
		EffectBuffHealth, EffectBuffEnergy, EffectBuffSpirit,
		EffectDecreaseHealth, EffectDecreaseEnergy, EffectDecreaseSpirit,
		EffectDebuffHealth, EffectDebuffEnergy, EffectDebuffSpirit,
	}

	for _, kind := range stats {
		data := fmt.Sprintf(`{"type":%d,"min":-5,"max":12}`, kind)
		effect, err := DecodeConsumeEffect([]byte(data))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", kind, err)
		}

		stat, ok := effect.(StatEffect)
		if !ok {
			t.Fatalf("%s: expected StatEffect, got %T", kind, effect)
		}

		if stat.Type() != kind || stat.Min != -5 || stat.Max != 12 {
			t.Errorf("%s: decoded wrong payload %+v", kind, stat)
		}
	}

	effect, err := DecodeConsumeEffect([]byte(`{"type":0}`))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := effect.(UnknownEffect); !ok {
		t.Errorf("expected UnknownEffect, got %T", effect)
	}

	effect, err = DecodeConsumeEffect([]byte(`{"type":13,"min":100,"max":300,"worthMultiplier":2}`))
	if err != nil {
		t.Fatal(err)
	}
	credits, ok := effect.(AddCreditsEffect)
	if !ok {
		t.Fatalf("expected AddCreditsEffect, got %T", effect)
	}
	if credits.Min != 100 || credits.Max != 300 || credits.WorthMultiplier == nil || *credits.WorthMultiplier != 2 {
		t.Errorf("decoded wrong payload %+v", credits)
	}

	effect, err = DecodeConsumeEffect([]byte(`{"type":13,"min":1,"max":3}`))
	if err != nil {
		t.Fatal(err)
	}
	if effect.(AddCreditsEffect).WorthMultiplier != nil {
		t.Error("expected absent worthMultiplier to stay nil")
	}

	effect, err = DecodeConsumeEffect([]byte(`{"type":14,"min":10,"max":20}`))
	if err != nil {
		t.Fatal(err)
	}
	if remove, ok := effect.(RemoveCreditsEffect); !ok || remove.Average() != 15 {
		t.Errorf("expected RemoveCreditsEffect averaging 15, got %#v", effect)
	}

	effect, err = DecodeConsumeEffect([]byte(`{"type":15,"missionName":"Cleanup"}`))
	if err != nil {
		t.Fatal(err)
	}
	if mission, ok := effect.(AcceptMissionEffect); !ok || mission.MissionName != "Cleanup" {
		t.Errorf("expected AcceptMissionEffect{Cleanup}, got %#v", effect)
	}

	effect, err = DecodeConsumeEffect([]byte(`{
		"type": 16, "chance": 0.25, "itemName": "Scrap",
		"qualityMin": 1, "qualityMax": 3, "quantityMin": 2, "quantityMax": 5
	}`))
	if err != nil {
		t.Fatal(err)
	}
	expected := AddItemEffect{Chance: 0.25, ItemName: "Scrap", QualityMin: 1, QualityMax: 3, QuantityMin: 2, QuantityMax: 5}
	if effect != expected {
		t.Errorf("expected %+v, got %+v", expected, effect)
	}
}

func TestDecodeUnknownVariant(t *testing.T) {
	_, err := DecodeConsumeEffect([]byte(`{"type":17}`))

	var unknown *UnknownVariantError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownVariantError, got %v", err)
	}

	if unknown.Value != 17 || len(unknown.Expected) != 17 {
		t.Errorf("unexpected error contents %+v", unknown)
	}

	if _, err := DecodeConsumeEffect([]byte(`{"type":255}`)); !errors.As(err, &unknown) {
		t.Errorf("expected UnknownVariantError for 255, got %v", err)
	}
}

func TestDecodeBadTag(t *testing.T) {
	cases := map[string]string{
		"missing":  `{"min":1,"max":2}`,
		"negative": `{"type":-1}`,
		"float":    `{"type":1.5}`,
		"string":   `{"type":"1"}`,
		"null":     `{"type":null}`,
	}

	for name, data := range cases {
		if _, err := DecodeConsumeEffect([]byte(data)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}

	if _, err := DecodeConsumeEffect([]byte(`{"min":1}`)); !errors.Is(err, ErrMissingEffectTag) {
		t.Errorf("expected ErrMissingEffectTag, got %v", err)
	}
}

func TestDecodeBadPayload(t *testing.T) {
	_, err := DecodeConsumeEffect([]byte(`{"type":2,"min":"lots","max":3}`))

	var payloadErr *EffectPayloadError
	if !errors.As(err, &payloadErr) {
		t.Fatalf("expected EffectPayloadError, got %v", err)
	}

	if payloadErr.Type != EffectRestoreEnergy {
		t.Errorf("expected RestoreEnergy, got %s", payloadErr.Type)
	}
}

func TestDecodeMissingPayloadField(t *testing.T) {
	cases := []struct {
		data     string
		expected EffectType
	}{
		{`{"type":1,"max":3}`, EffectRestoreHealth},
		{`{"type":12,"min":1}`, EffectDebuffSpirit},
		{`{"type":13}`, EffectAddCredits},
		{`{"type":13,"min":5,"max":null}`, EffectAddCredits},
		{`{"type":14,"max":2}`, EffectRemoveCredits},
		{`{"type":15}`, EffectAcceptMission},
		{`{"type":16,"chance":0.5,"itemName":"Scrap","qualityMin":0,"qualityMax":1,"quantityMin":1}`, EffectAddItem},
	}

	for _, c := range cases {
		effect, err := DecodeConsumeEffect([]byte(c.data))

		var payloadErr *EffectPayloadError
		if !errors.As(err, &payloadErr) || !errors.Is(err, ErrMissingPayloadField) {
			t.Errorf("%s: expected missing field error, got %#v (%v)", c.data, effect, err)
			continue
		}

		if payloadErr.Type != c.expected {
			t.Errorf("%s: expected %s, got %s", c.data, c.expected, payloadErr.Type)
		}
	}

	// worthMultiplier stays optional.
	if _, err := DecodeConsumeEffect([]byte(`{"type":13,"min":1,"max":2}`)); err != nil {
		t.Errorf("expected AddCredits without worthMultiplier to decode, got %v", err)
	}
}

func TestConsumeEffectsUnmarshal(t *testing.T) {
	var item Item
	data := `{
		"name": "Stimpack", "type": 3, "level": 1, "worthMultiplier": 40,
		"consumeEffects": [{"type":1,"min":10,"max":20},{"type":13,"min":50,"max":70}]
	}`

	if err := json.Unmarshal([]byte(data), &item); err != nil {
		t.Fatal(err)
	}

	effects := item.Effects()
	if len(effects) != 2 {
		t.Fatalf("expected 2 effects, got %d", len(effects))
	}

	if effects[0].Type() != EffectRestoreHealth || effects[1].Type() != EffectAddCredits {
		t.Errorf("unexpected effect order: %s, %s", effects[0].Type(), effects[1].Type())
	}

	if got := EffectsOf[AddCreditsEffect](effects); len(got) != 1 || got[0].Average() != 60 {
		t.Errorf("expected one AddCredits averaging 60, got %+v", got)
	}

	var noEffects Item
	if err := json.Unmarshal([]byte(`{"name":"Rock"}`), &noEffects); err != nil {
		t.Fatal(err)
	}
	if noEffects.ConsumeEffects != nil || noEffects.Effects() != nil {
		t.Error("expected absent consumeEffects to stay nil")
	}

	var bad Item
	err := json.Unmarshal([]byte(`{"name":"Glitch","consumeEffects":[{"type":1,"min":1,"max":2},{"type":99}]}`), &bad)
	var unknown *UnknownVariantError
	if !errors.As(err, &unknown) {
		t.Errorf("expected UnknownVariantError from nested effect, got %v", err)
	}
}

func TestEffectTypeString(t *testing.T) {
	if s := EffectAcceptMission.String(); s != "AcceptMission" {
		t.Errorf("expected AcceptMission, got %s", s)
	}

	if s := EffectType(40).String(); s != "EffectType(40)" {
		t.Errorf("expected EffectType(40), got %s", s)
	}
}
