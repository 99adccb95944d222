// internal/workers/eoi/create-eoi/validation.go
package createeoi

import (
	"encoding/json"
	"strings"

	"bdmatch-workers/internal/common/errors"
	"bdmatch-workers/internal/common/validation"
)

const inputSchema = `{
	"type": "object",
	"required": ["accessToken", "initiatorType", "eoiType", "title", "description"],
	"properties": {
		"accessToken": {"type": "string", "minLength": 1},
		"initiatorType": {"type": "string", "enum": ["bd_partner", "company"]},
		"bdPartnerId": {"type": "string"},
		"companyId": {"type": "string"},
		"productId": {"type": "string"},
		"eoiType": {"type": "string", "minLength": 1},
		"title": {"type": "string", "minLength": 3, "maxLength": 255},
		"description": {"type": "string", "minLength": 10, "maxLength": 5000},
		"proposedCommissionRate": {"type": "number", "minimum": 0, "maximum": 100},
		"expectedDealSize": {"type": "number", "minimum": 0},
		"exclusivity": {"type": "boolean"},
		"timeline": {"type": "string"},
		"targetRegions": {"type": "array", "items": {"type": "string"}},
		"targetIndustries": {"type": "array", "items": {"type": "string"}},
		"targetCustomerTypes": {"type": "array", "items": {"type": "string"}},
		"sendImmediately": {"type": "boolean"},
		"validityDays": {"type": "integer", "minimum": 1, "maximum": 365}
	}
}`

func validateInput(input *Input) error {
	raw, err := json.Marshal(input)
	if err != nil {
		return errors.NewValidationFailedError(err.Error())
	}
	var asMap map[string]interface{}
	if err := json.Unmarshal(raw, &asMap); err != nil {
		return errors.NewValidationFailedError(err.Error())
	}

	result, err := validation.ValidateInput(asMap, inputSchema)
	if err != nil {
		return errors.NewValidationFailedError(err.Error())
	}
	if !result.Valid {
		return errors.NewValidationFailedError(strings.Join(result.GetErrorMessages(), "; "))
	}
	return nil
}
