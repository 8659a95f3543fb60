package validate_test

import (
	"testing"

	"github.com/ardanlabs/powledger/business/sys/validate"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type submit struct {
	BlockID string `json:"block_id" validate:"required,uuid4"`
	Amount  uint64 `json:"amount" validate:"gt=0"`
}

func Test_Check(t *testing.T) {
	t.Log("Given the need to validate request models.")
	{
		t.Logf("\tTest 0:\tWhen handling a valid model.")
		{
			v := submit{BlockID: "9c5b94b1-35ad-49bb-b118-8e8fc24abf80", Amount: 10}
			if err := validate.Check(v); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to validate the model: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to validate the model.", success)
		}

		t.Logf("\tTest 1:\tWhen handling an invalid model.")
		{
			v := submit{BlockID: "not-a-uuid"}
			err := validate.Check(v)
			if !validate.IsFieldErrors(err) {
				t.Fatalf("\t%s\tTest 1:\tShould get field errors: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould get field errors.", success)

			fields := validate.GetFieldErrors(err).Fields()
			if _, exists := fields["block_id"]; !exists {
				t.Fatalf("\t%s\tTest 1:\tShould report the json field name: %v", failed, fields)
			}
			if _, exists := fields["amount"]; !exists {
				t.Fatalf("\t%s\tTest 1:\tShould report the amount field: %v", failed, fields)
			}
			t.Logf("\t%s\tTest 1:\tShould report the json field names.", success)
		}
	}
}
