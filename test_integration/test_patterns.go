package main

import (
	"fmt"
	"regexp"
)

// Local copies of the library's boundary patterns, checked against
// known-good and known-bad inputs without any network access.
var (
	platformURL = regexp.MustCompile(`^(?:https?://)?(?:(?:www|m)\.)?(?:soundcloud\.com|snd\.sc)/`)
	credential  = regexp.MustCompile(`client_id:"([A-Za-z0-9]+)"`)
)

func testPatterns() {
	fmt.Println("\n6️⃣ Testing URL and Credential Patterns...")

	fmt.Println("   Testing platform URL matching...")
	testURLPattern()

	fmt.Println("   Testing credential extraction...")
	testCredentialPattern()
}

func testURLPattern() {
	cases := []struct {
		url  string
		want bool
	}{
		{"https://soundcloud.com/artist/track", true},
		{"http://m.soundcloud.com/artist/track", true},
		{"www.soundcloud.com/artist/sets/mix", true},
		{"snd.sc/abc123", true},
		{"https://soundcloud.com", false},
		{"https://notsoundcloud.com/artist/track", false},
		{"https://example.com/soundcloud.com/track", false},
	}

	for _, tc := range cases {
		got := platformURL.MatchString(tc.url)
		if got == tc.want {
			fmt.Printf("      ✅ %s -> %v\n", tc.url, got)
		} else {
			fmt.Printf("      ❌ %s -> %v, want %v\n", tc.url, got, tc.want)
		}
	}
}

func testCredentialPattern() {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain assignment",
			input: `var x={client_id:"Abc123XYZ",env:"production"};`,
			want:  "Abc123XYZ",
		},
		{
			name:  "equals decoy ignored",
			input: `e.client_id="nope";f={client_id:"Real99"};`,
			want:  "Real99",
		},
		{
			name:  "no credential",
			input: `var y = {env:"production"};`,
			want:  "",
		},
	}

	for _, tc := range cases {
		got := ""
		if m := credential.FindStringSubmatch(tc.input); m != nil {
			got = m[1]
		}
		if got == tc.want {
			fmt.Printf("      ✅ %s: extracted %q\n", tc.name, got)
		} else {
			fmt.Printf("      ❌ %s: extracted %q, want %q\n", tc.name, got, tc.want)
		}
	}
}
