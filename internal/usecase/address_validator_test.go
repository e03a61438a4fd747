package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"app/internal/domain/model"
)

func validAddress() model.Address {
	return model.Address{
		FullName:     "Asha Rao",
		Phone:        "9876543210",
		AddressLine1: "12 MG Road",
		City:         "Bengaluru",
		State:        "Karnataka",
		PostalCode:   "560001",
	}
}

func TestValidateAddress_RequiredFields(t *testing.T) {
	cases := []struct {
		field string
		blank func(*model.Address)
		want  string
	}{
		{"fullName", func(a *model.Address) { a.FullName = "  " }, "full name is required"},
		{"phone", func(a *model.Address) { a.Phone = "" }, "phone is required"},
		{"addressLine1", func(a *model.Address) { a.AddressLine1 = "" }, "address line 1 is required"},
		{"city", func(a *model.Address) { a.City = "" }, "city is required"},
		{"state", func(a *model.Address) { a.State = "  " }, "state is required"},
		{"postalCode", func(a *model.Address) { a.PostalCode = "" }, "postal code is required"},
	}

	for _, tc := range cases {
		t.Run(tc.field, func(t *testing.T) {
			a := validAddress()
			tc.blank(&a)

			err := ValidateAddress(a, model.ServiceabilityServiceable, true)
			require.Error(t, err)
			assert.Equal(t, tc.want, err.Error())

			var fe *FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tc.field, fe.Field)
		})
	}
}

func TestValidateAddress_PhoneFormat(t *testing.T) {
	for _, phone := range []string{"12345", "98765432101", "98765abc10", "+919876543210"} {
		a := validAddress()
		a.Phone = phone

		err := ValidateAddress(a, model.ServiceabilityServiceable, true)
		require.Error(t, err, phone)
		assert.Equal(t, "enter a valid 10-digit phone number", err.Error())
	}
}

func TestValidateAddress_PostalFormat(t *testing.T) {
	for _, pc := range []string{"5600", "5600011", "56000a"} {
		a := validAddress()
		a.PostalCode = pc

		err := ValidateAddress(a, model.ServiceabilityServiceable, true)
		require.Error(t, err, pc)
		assert.Equal(t, "enter a valid 6-digit pincode", err.Error())
	}
}

func TestValidateAddress_NotServiceable(t *testing.T) {
	err := ValidateAddress(validAddress(), model.ServiceabilityNotServiceable, true)
	require.Error(t, err)
	assert.Equal(t, "delivery is not available for this pincode", err.Error())
}

func TestValidateAddress_UnknownWithoutSelection(t *testing.T) {
	err := ValidateAddress(validAddress(), model.ServiceabilityUnknown, false)
	require.Error(t, err)
	assert.Equal(t, "enter a valid pincode", err.Error())
}

func TestValidateAddress_ServiceableWithoutSelectionPasses(t *testing.T) {
	//選択肢がまだ無くてもフォールバックの無料配送で進める
	assert.NoError(t, ValidateAddress(validAddress(), model.ServiceabilityServiceable, false))
}

func TestValidateAddress_Pure(t *testing.T) {
	a := validAddress()
	a.Phone = "123"

	err1 := ValidateAddress(a, model.ServiceabilityServiceable, true)
	err2 := ValidateAddress(a, model.ServiceabilityServiceable, true)
	require.Error(t, err1)
	require.Error(t, err2)
	assert.Equal(t, err1.Error(), err2.Error())
}

func TestFormatShippingAddress(t *testing.T) {
	a := validAddress()
	a.AddressLine2 = "Flat 4B"
	a.Landmark = "opp. metro station"

	got := FormatShippingAddress(a)
	assert.Equal(t,
		"Asha Rao, 9876543210, 12 MG Road, Flat 4B, Landmark: opp. metro station, Bengaluru, Karnataka - 560001",
		got)
}

func TestFormatShippingAddress_OptionalPartsOmitted(t *testing.T) {
	got := FormatShippingAddress(validAddress())
	assert.Equal(t, "Asha Rao, 9876543210, 12 MG Road, Bengaluru, Karnataka - 560001", got)
}
