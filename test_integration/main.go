package main

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

func main() {
	fmt.Println("🧪 Integration Testing: search-page payload and resolver connectivity")
	fmt.Println(strings.Repeat("=", 70))

	fmt.Println("\n1️⃣ Testing HTTP Client Configuration...")
	testHTTPClient()

	fmt.Println("\n2️⃣ Testing Results Page Payload Marker...")
	testResultsPage()

	fmt.Println("\n3️⃣ Testing Error Handling...")
	testErrorHandling()

	testResolverEndpoints()

	testPatterns()

	fmt.Println("\n✅ Integration testing completed!")
}

func newClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			ForceAttemptHTTP2:  false,
			MaxIdleConns:       100,
			IdleConnTimeout:    90 * time.Second,
			DisableCompression: true,
		},
		Timeout: timeout,
	}
}

func testHTTPClient() {
	client := newClient(30 * time.Second)

	if transport, ok := client.Transport.(*http.Transport); ok {
		if !transport.ForceAttemptHTTP2 {
			fmt.Println("   ✅ HTTP/2 disabled, matching library transport")
		} else {
			fmt.Println("   ❌ HTTP/2 still enabled")
		}
	}

	resp, err := client.Get("https://www.youtube.com")
	if err != nil {
		fmt.Printf("   ❌ Basic connectivity test failed: %v\n", err)
		return
	}
	defer resp.Body.Close()
	fmt.Printf("   ✅ Basic connectivity test passed (status: %d)\n", resp.StatusCode)
}

func testResultsPage() {
	client := newClient(30 * time.Second)

	req, err := http.NewRequest("GET", "https://www.youtube.com/results?search_query=test", nil)
	if err != nil {
		fmt.Printf("   ❌ Failed to create request: %v\n", err)
		return
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("   ❌ Failed to fetch results page: %v\n", err)
		return
	}
	defer resp.Body.Close()
	fmt.Printf("   ✅ Results page accessible (status: %d)\n", resp.StatusCode)

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5*1024*1024))
	if err != nil {
		fmt.Printf("   ❌ Failed to read response body: %v\n", err)
		return
	}
	content := string(body)

	if strings.Contains(content, "var ytInitialData = ") {
		fmt.Println("   ✅ Payload marker found in page")
	} else {
		fmt.Println("   ⚠️  Payload marker not found (page layout may have changed)")
	}
	if strings.Contains(content, "videoRenderer") {
		fmt.Println("   ✅ Video renderer entries present")
	} else {
		fmt.Println("   ⚠️  No video renderer entries in first 5MB")
	}
}

func testErrorHandling() {
	fmt.Println("   Testing error handling with an unroutable host...")

	client := newClient(5 * time.Second)
	_, err := client.Get("https://nonexistent.invalid/")
	if err != nil {
		fmt.Printf("      ✅ Transport error surfaced as expected: %v\n", err)
	} else {
		fmt.Println("      ❌ Expected a transport error, got none")
	}
}

func init() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
