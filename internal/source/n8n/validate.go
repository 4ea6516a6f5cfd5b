package n8n

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"campaign_builder/internal/domain"
)

// ValidateTag maps one element of the tags endpoint. It requires a numeric
// id and string nome and tipo; tipo must name a known tag kind.
func ValidateTag(element any) (domain.Tag, error) {
	obj, ok := element.(map[string]any)
	if !ok {
		return domain.Tag{}, fmt.Errorf("tag is %T, not an object", element)
	}
	if err := requireFields(obj, fieldID, fieldTagName, fieldTagKind); err != nil {
		return domain.Tag{}, fmt.Errorf("tag: %w", err)
	}

	id, err := integer(obj, fieldID)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("tag: %w", err)
	}
	name, err := str(obj, fieldTagName)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("tag %d: %w", id, err)
	}
	rawKind, err := str(obj, fieldTagKind)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("tag %d: %w", id, err)
	}
	kind, ok := tagKinds[strings.ToLower(strings.TrimSpace(rawKind))]
	if !ok {
		return domain.Tag{}, fmt.Errorf("tag %d: unknown kind %q", id, rawKind)
	}

	return domain.Tag{
		ID:        id,
		Name:      name,
		Kind:      kind,
		CreatedAt: timestamp(obj, fieldCreatedAt),
		UpdatedAt: timestamp(obj, fieldUpdatedAt),
	}, nil
}

// ValidateAccount maps one element of the accounts endpoint.
func ValidateAccount(element any) (domain.Account, error) {
	obj, ok := element.(map[string]any)
	if !ok {
		return domain.Account{}, fmt.Errorf("account is %T, not an object", element)
	}
	if err := requireFields(obj, fieldID, fieldAccountName, fieldPhone, fieldStatus, fieldReputation); err != nil {
		return domain.Account{}, fmt.Errorf("account: %w", err)
	}

	id, err := integer(obj, fieldID)
	if err != nil {
		return domain.Account{}, fmt.Errorf("account: %w", err)
	}
	name, err := str(obj, fieldAccountName)
	if err != nil {
		return domain.Account{}, fmt.Errorf("account %d: %w", id, err)
	}
	phone, err := phoneNumber(obj[fieldPhone])
	if err != nil {
		return domain.Account{}, fmt.Errorf("account %d: %w", id, err)
	}

	rawStatus, err := str(obj, fieldStatus)
	if err != nil {
		return domain.Account{}, fmt.Errorf("account %d: %w", id, err)
	}
	status, ok := accountStatuses[strings.ToLower(strings.TrimSpace(rawStatus))]
	if !ok {
		status = domain.AccountPending
	}

	rawRep, err := str(obj, fieldReputation)
	if err != nil {
		return domain.Account{}, fmt.Errorf("account %d: %w", id, err)
	}
	rep, ok := reputations[strings.ToLower(strings.TrimSpace(rawRep))]
	if !ok {
		rep = domain.ReputationNeutral
	}

	var tagID *int64
	if v, present := obj[fieldTagID]; present && v != nil {
		tid, err := integer(obj, fieldTagID)
		if err != nil {
			return domain.Account{}, fmt.Errorf("account %d: %w", id, err)
		}
		tagID = &tid
	}

	return domain.Account{
		ID:         id,
		Name:       name,
		Phone:      phone,
		Status:     status,
		Reputation: rep,
		TagID:      tagID,
		CreatedAt:  timestamp(obj, fieldCreatedAt),
		UpdatedAt:  timestamp(obj, fieldUpdatedAt),
	}, nil
}

func requireFields(obj map[string]any, fields ...string) error {
	var missing []string
	for _, f := range fields {
		if _, ok := obj[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing fields %s", strings.Join(missing, ", "))
	}
	return nil
}

func integer(obj map[string]any, field string) (int64, error) {
	switch v := obj[field].(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("%s is not an integer: %s", field, v)
		}
		return n, nil
	case float64:
		if v != float64(int64(v)) {
			return 0, fmt.Errorf("%s is not an integer: %v", field, v)
		}
		return int64(v), nil
	default:
		return 0, fmt.Errorf("%s is %T, not a number", field, v)
	}
}

func str(obj map[string]any, field string) (string, error) {
	s, ok := obj[field].(string)
	if !ok {
		return "", fmt.Errorf("%s is %T, not a string", field, obj[field])
	}
	return s, nil
}

func phoneNumber(v any) (string, error) {
	switch p := v.(type) {
	case string:
		if strings.TrimSpace(p) == "" {
			return "", fmt.Errorf("%s is empty", fieldPhone)
		}
		return p, nil
	case json.Number:
		return p.String(), nil
	case float64:
		return fmt.Sprintf("%.0f", p), nil
	default:
		return "", fmt.Errorf("%s is %T, not a number or string", fieldPhone, v)
	}
}

// timestamp parses an optional timestamp field, returning the zero time when
// it is absent or unparsable.
func timestamp(obj map[string]any, field string) time.Time {
	s, ok := obj[field].(string)
	if !ok || s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
