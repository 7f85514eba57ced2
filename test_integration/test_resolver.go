package main

import (
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

func testResolverEndpoints() {
	fmt.Println("\n4️⃣ Testing Resolver Endpoints...")

	client := newClient(30 * time.Second)

	// The resolve endpoint must reject a request without a client id.
	// Anything in the 4xx range means the fail-closed path is intact.
	resp, err := client.Get("https://api-v2.soundcloud.com/resolve?url=https://soundcloud.com/discover")
	if err != nil {
		fmt.Printf("   ❌ Failed to reach resolve endpoint: %v\n", err)
	} else {
		resp.Body.Close()
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			fmt.Printf("   ✅ Resolve without client id rejected (status: %d)\n", resp.StatusCode)
		} else {
			fmt.Printf("   ⚠️  Unexpected resolve status without client id: %d\n", resp.StatusCode)
		}
	}

	fmt.Println("\n5️⃣ Testing Front Page Script Assets...")
	testFrontPageAssets(client)
}

func testFrontPageAssets(client *http.Client) {
	resp, err := client.Get("https://soundcloud.com")
	if err != nil {
		fmt.Printf("   ❌ Failed to fetch front page: %v\n", err)
		return
	}
	defer resp.Body.Close()
	fmt.Printf("   ✅ Front page accessible (status: %d)\n", resp.StatusCode)

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5*1024*1024))
	if err != nil {
		fmt.Printf("   ❌ Failed to read front page: %v\n", err)
		return
	}
	content := string(body)

	scriptTag := regexp.MustCompile(`<script crossorigin src="([^"]+)"></script>`)
	assets := scriptTag.FindAllStringSubmatch(content, -1)
	if len(assets) == 0 {
		fmt.Println("   ⚠️  No crossorigin script assets found (markup may have changed)")
		return
	}
	fmt.Printf("   ✅ Found %d crossorigin script assets\n", len(assets))

	// Discovery walks assets from the end; check the last one carries
	// the credential pattern.
	clientID := regexp.MustCompile(`client_id:"([A-Za-z0-9]+)"`)
	last := assets[len(assets)-1][1]
	if !strings.HasPrefix(last, "http") {
		fmt.Printf("   ⚠️  Last asset URL is not absolute: %s\n", last)
		return
	}

	assetResp, err := client.Get(last)
	if err != nil {
		fmt.Printf("   ❌ Failed to fetch asset: %v\n", err)
		return
	}
	defer assetResp.Body.Close()

	assetBody, err := io.ReadAll(io.LimitReader(assetResp.Body, 10*1024*1024))
	if err != nil {
		fmt.Printf("   ❌ Failed to read asset: %v\n", err)
		return
	}

	if m := clientID.FindSubmatch(assetBody); m != nil {
		fmt.Printf("   ✅ Credential pattern found in last asset (%d chars)\n", len(m[1]))
	} else {
		fmt.Println("   ⚠️  Credential pattern not in last asset (discovery walks earlier ones)")
	}
}
