package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartmobility/tripplanner/internal/auth"
	"github.com/smartmobility/tripplanner/internal/routing"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.Run(append([]string{"tripctl"}, args...))
	return out.String(), err
}

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		in      string
		want    routing.Coordinate
		wantErr bool
	}{
		{in: "6.2476,-75.5695", want: routing.Coordinate{Latitude: 6.2476, Longitude: -75.5695}},
		{in: " 6.2087 , -75.5671 ", want: routing.Coordinate{Latitude: 6.2087, Longitude: -75.5671}},
		{in: "Parque Lleras", wantErr: true},
		{in: "6.2,abc", wantErr: true},
		{in: "91,0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseCoordinate(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPriceFile(t *testing.T) {
	routes, err := priceFile("testdata/directions_transit.json")
	require.NoError(t, err)
	require.Len(t, routes, 2)

	assert.Equal(t, "$3.600", routes[0].Fare)
	assert.Equal(t, routing.TransportMetro, routes[0].Segments[1].Type)
	assert.Equal(t, "$2.400", routes[1].Fare)
}

func TestPriceFile_Missing(t *testing.T) {
	_, err := priceFile("testdata/nope.json")
	assert.Error(t, err)
}

func TestFareCommand(t *testing.T) {
	out, err := runApp(t, "fare", "--file", "testdata/directions_transit.json")
	require.NoError(t, err)

	assert.Contains(t, out, "Ruta 1")
	assert.Contains(t, out, "Ruta 2")
	assert.Contains(t, out, "$3.600")
	assert.Contains(t, out, "METRO")
}

func TestDecodeCommand(t *testing.T) {
	out, err := runApp(t, "decode", "_p~iF~ps|U_ulLnnqC_mqNvxq`@")
	require.NoError(t, err)

	assert.Contains(t, out, "38.50000,-120.20000")
	assert.Contains(t, out, "40.70000,-120.95000")
	assert.Contains(t, out, "# 3 points")
}

func TestDecodeCommand_RequiresArgument(t *testing.T) {
	_, err := runApp(t, "decode")
	assert.Error(t, err)
}

func TestTokenCommand(t *testing.T) {
	out, err := runApp(t, "token",
		"--user", "user-123", "--name", "Ana",
		"--signing-key", "test-signing-key",
		"--issuer", "https://id.smartmobility.co",
		"--audience", "tripplanner-api")
	require.NoError(t, err)

	svc := auth.NewJWTService(auth.JWTConfig{
		SigningKey: "test-signing-key",
		Issuer:     "https://id.smartmobility.co",
		Audience:   "tripplanner-api",
	})
	claims, err := svc.ValidateAccessToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "Ana", claims.Name)
}
