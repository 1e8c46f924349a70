package auth

import (
	"fmt"
	"io"
	"strings"
)

// ShowSessionGuide writes step-by-step instructions for copying the
// sessionid cookie out of a browser
func ShowSessionGuide(w io.Writer) {
	line := strings.Repeat("=", 72)
	fmt.Fprintln(w, line)
	fmt.Fprintln(w, "📚 FINDING YOUR INSTAGRAM SESSION ID")
	fmt.Fprintln(w, line)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "igsaved reads your saved posts with the session cookie of a logged-in")
	fmt.Fprintln(w, "browser. Your password is never needed.")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "🌐 STEP 1: Open https://www.instagram.com in your browser and log in")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "🔧 STEP 2: Open Developer Tools")
	fmt.Fprintln(w, "   • Chrome/Edge/Brave/Firefox: F12 or Ctrl+Shift+I (Cmd+Option+I on Mac)")
	fmt.Fprintln(w, "   • Safari: enable the Develop menu in Settings, then Cmd+Option+I")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "🍪 STEP 3: Go to Application > Cookies > https://www.instagram.com")
	fmt.Fprintln(w, "   (the tab is called Storage in Firefox)")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "🔑 STEP 4: Find 'sessionid' and copy its value")
	fmt.Fprintln(w, "   It looks like 12345678%3AaBcDeF...%3A28%3A...")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "⚠️  SECURITY WARNING:")
	fmt.Fprintln(w, "   • The session ID gives FULL access to your account; never share it")
	fmt.Fprintln(w, "   • Logging out of Instagram in the browser invalidates it")
	fmt.Fprintln(w, "   • 'igsaved auth login' stores it in your keychain or an encrypted file")
	fmt.Fprintln(w, line)
	fmt.Fprintln(w)
}

// ShowQuickGuide writes a one-line reminder for experienced users
func ShowQuickGuide(w io.Writer) {
	fmt.Fprintln(w, "\n🍪 F12 → Application → Cookies → instagram.com → copy 'sessionid'")
	fmt.Fprintln(w, "   Run 'igsaved auth login --help-cookie' for detailed instructions")
}
