package models

import "testing"

func TestCreateInstanceRequestValidate(t *testing.T) {
	cases := []struct {
		name    string
		req     CreateInstanceRequest
		wantErr bool
	}{
		{"empty request", CreateInstanceRequest{}, false},
		{"known mode and map", CreateInstanceRequest{GameMode: "wingman", Map: "de_inferno"}, false},
		{"valid steam ids", CreateInstanceRequest{AdminSteamIDs: []string{"76561198000000001"}}, false},
		{"unknown mode", CreateInstanceRequest{GameMode: "armsrace"}, true},
		{"mode with newline", CreateInstanceRequest{GameMode: "competitive\nrm -rf /opt"}, true},
		{"map with shell metacharacters", CreateInstanceRequest{Map: "de_dust2; id"}, true},
		{"map with uppercase", CreateInstanceRequest{Map: "De_Dust2"}, true},
		{"steam id with letters", CreateInstanceRequest{AdminSteamIDs: []string{"not-a-steamid64"}}, true},
		{"steam id too short", CreateInstanceRequest{AdminSteamIDs: []string{"12345"}}, true},
	}

	for _, tc := range cases {
		err := tc.req.Validate()
		if tc.wantErr && err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("%s: unexpected error: %v", tc.name, err)
		}
	}
}
