package chargeauth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64Ptr(f float64) *float64 { return &f }

func TestValidateNewCustomer(t *testing.T) {
	c := &Customer{
		Login: strPtr("  driver.one  "),
		Email: strPtr(" driver@example.com "),
		Phone: strPtr("+49 30 1234567"),
	}
	require.NoError(t, ValidateNewCustomer(c))

	assert.Equal(t, "driver.one", *c.Login)
	assert.Equal(t, "driver@example.com", *c.Email)
	require.NotNil(t, c.CreationDateEpochtime)
	require.NotNil(t, c.UpdateDateEpochtime)
	assert.Equal(t, *c.CreationDateEpochtime, *c.UpdateDateEpochtime)
}

func TestValidateNewCustomerRejections(t *testing.T) {
	tests := []struct {
		name  string
		c     *Customer
		field string
	}{
		{"missing login", &Customer{}, "Login"},
		{"blank login", &Customer{Login: strPtr("   ")}, "Login"},
		{"short login", &Customer{Login: strPtr("ab")}, "Login"},
		{"login with spaces", &Customer{Login: strPtr("no spaces")}, "Login"},
		{"bad email", &Customer{Login: strPtr("driver"), Email: strPtr("not-an-email")}, "Email"},
		{"bad phone", &Customer{Login: strPtr("driver"), Phone: strPtr("abc")}, "Phone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNewCustomer(tt.c)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestValidateCustomerUpdate(t *testing.T) {
	now := int64(12345)
	c := &Customer{
		ID:                    7,
		Email:                 strPtr("new@example.com"),
		CreationDateEpochtime: &now,
	}
	require.NoError(t, ValidateCustomerUpdate(RoleUser, c))

	assert.Nil(t, c.CreationDateEpochtime, "creation stamp never travels on update")
	assert.NotNil(t, c.UpdateDateEpochtime)
}

func TestValidateCustomerUpdateAccessRightsIsAdminOnly(t *testing.T) {
	c := &Customer{ID: 7, AccessRights: strPtr("Admin")}
	assert.ErrorIs(t, ValidateCustomerUpdate(RoleUser, c), ErrForbidden)
	assert.ErrorIs(t, ValidateCustomerUpdate(RoleStationOperator, c), ErrForbidden)

	c = &Customer{ID: 7, AccessRights: strPtr("StationOperator")}
	assert.NoError(t, ValidateCustomerUpdate(RoleAdmin, c))
}

func TestValidateCustomerUpdateRequiresID(t *testing.T) {
	err := ValidateCustomerUpdate(RoleAdmin, &Customer{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "ID", verr.Field)
}

func TestValidateNewCar(t *testing.T) {
	c := &Car{
		CustomerID:         i64Ptr(7),
		LicensePlate:       strPtr(" b ab 1234 "),
		Model:              strPtr(" Zoe "),
		BatteryCapacityKWh: f64Ptr(52),
	}
	require.NoError(t, ValidateNewCar(c))

	assert.Equal(t, "BAB1234", *c.LicensePlate, "plates are uppercased and de-spaced")
	assert.Equal(t, "Zoe", *c.Model)
	assert.NotNil(t, c.CreationDateEpochtime)
}

func TestValidateNewCarRejections(t *testing.T) {
	err := ValidateNewCar(&Car{LicensePlate: strPtr("B-AB-1234")})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "CustomerID", verr.Field)

	err = ValidateNewCar(&Car{CustomerID: i64Ptr(7), BatteryCapacityKWh: f64Ptr(-1)})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "BatteryCapacityKWh", verr.Field)

	err = ValidateNewCar(&Car{CustomerID: i64Ptr(7), LicensePlate: strPtr("!")})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "LicensePlate", verr.Field)
}

func TestValidateCarUpdateRequiresID(t *testing.T) {
	err := ValidateCarUpdate(&Car{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "ID", verr.Field)
}

func TestValidateNewRFID(t *testing.T) {
	r := &RFID{CustomerID: i64Ptr(7), Tag: strPtr(" abcd1234 ")}
	require.NoError(t, ValidateNewRFID(r))
	assert.Equal(t, "ABCD1234", *r.Tag, "tags are stored uppercase")

	err := ValidateNewRFID(&RFID{CustomerID: i64Ptr(7), Tag: strPtr("x")})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Tag", verr.Field)

	err = ValidateNewRFID(&RFID{Tag: strPtr("ABCD1234")})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "CustomerID", verr.Field)
}

func TestValidateNewStation(t *testing.T) {
	s := &Station{Name: strPtr(" Hauptbahnhof 3 "), Latitude: f64Ptr(52.52), Longitude: f64Ptr(13.4)}
	require.NoError(t, ValidateNewStation(RoleAdmin, s))
	assert.Equal(t, "Hauptbahnhof 3", *s.Name)

	assert.ErrorIs(t, ValidateNewStation(RoleStationOperator, &Station{Name: strPtr("x")}), ErrForbidden)
	assert.ErrorIs(t, ValidateNewStation(RoleUser, &Station{Name: strPtr("x")}), ErrForbidden)
}

func TestValidateStationCoordinates(t *testing.T) {
	err := ValidateNewStation(RoleAdmin, &Station{Name: strPtr("x"), Latitude: f64Ptr(91)})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Latitude", verr.Field)

	err = ValidateNewStation(RoleAdmin, &Station{Name: strPtr("x"), Longitude: f64Ptr(-181)})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Longitude", verr.Field)
}

func TestValidateStationUpdate(t *testing.T) {
	s := &Station{ID: 3, Name: strPtr("renamed")}
	require.NoError(t, ValidateStationUpdate(RoleStationOperator, s))
	require.NoError(t, ValidateStationUpdate(RoleAdmin, s))

	assert.ErrorIs(t, ValidateStationUpdate(RoleUser, s), ErrForbidden)

	// Reassigning the tariff is admin-only even for operators.
	withTariff := &Station{ID: 3, TariffID: i64Ptr(9)}
	assert.ErrorIs(t, ValidateStationUpdate(RoleStationOperator, withTariff), ErrForbidden)
	assert.NoError(t, ValidateStationUpdate(RoleAdmin, withTariff))
}

func TestValidateNewTariff(t *testing.T) {
	tr := &Tariff{Name: strPtr(" Day rate "), PricePerKWh: f64Ptr(0.42), Currency: strPtr(" eur ")}
	require.NoError(t, ValidateNewTariff(RoleAdmin, tr))
	assert.Equal(t, "Day rate", *tr.Name)
	assert.Equal(t, "EUR", *tr.Currency)

	assert.ErrorIs(t, ValidateNewTariff(RoleStationOperator, &Tariff{Name: strPtr("x")}), ErrForbidden)
}

func TestValidateTariffRejections(t *testing.T) {
	var verr *ValidationError

	err := ValidateNewTariff(RoleAdmin, &Tariff{})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Name", verr.Field)

	err = ValidateNewTariff(RoleAdmin, &Tariff{Name: strPtr("x"), PricePerKWh: f64Ptr(-0.1)})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "PricePerKWh", verr.Field)

	err = ValidateNewTariff(RoleAdmin, &Tariff{Name: strPtr("x"), Currency: strPtr("EURO")})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Currency", verr.Field)

	err = ValidateTariffUpdate(RoleAdmin, &Tariff{})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "ID", verr.Field)
}
