package console

import (
	"io"
	"net"
	"testing"
	"time"

	"golang.org/x/text/encoding/charmap"
)

func TestTranslateForTelnet(t *testing.T) {
	input := []byte("Hello\nWorld" + string([]byte{telnetIAC}) + "!\r\n")
	got := translateForTelnet(input)
	expected := []byte{'H', 'e', 'l', 'l', 'o', '\r', '\n', 'W', 'o', 'r', 'l', 'd', telnetIAC, telnetIAC, '!', '\r', '\n'}
	if string(got) != string(expected) {
		t.Fatalf("unexpected translation: %v", got)
	}
}

func TestNormalizeToken(t *testing.T) {
	if got := normalizeToken("Utf-8"); got != "UTF8" {
		t.Fatalf("expected UTF8, got %q", got)
	}
	if info, ok := lookupCharset("latin-1"); !ok || info.name != "ISO-8859-1" {
		t.Fatalf("latin-1 should resolve to ISO-8859-1, got %+v", info)
	}
	if _, ok := lookupCharset("KOI8-R"); ok {
		t.Fatalf("KOI8-R is not supported")
	}
}

func TestEncodeDecodeCharmap(t *testing.T) {
	cm := charmap.CodePage437
	encoded := encodeWithCharmap(cm, []byte("é"))
	if len(encoded) != 1 {
		t.Fatalf("expected single byte encoding, got %d", len(encoded))
	}
	expected, ok := cm.EncodeRune('é')
	if !ok {
		t.Fatalf("failed to encode rune with charmap")
	}
	if encoded[0] != expected {
		t.Fatalf("expected %d, got %d", expected, encoded[0])
	}
	if decoded := decodeWithCharmap(cm, encoded); decoded != "é" {
		t.Fatalf("expected to decode to é, got %q", decoded)
	}
	if got := encodeWithCharmap(charmap.ISO8859_1, []byte("→")); string(got) != "?" {
		t.Fatalf("unmappable runes should become '?', got %q", got)
	}
}

func TestParseCharsetList(t *testing.T) {
	result := parseCharsetList(";UTF-8; ISO88591; ")
	if len(result) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(result))
	}
	if result[0] != "UTF-8" || result[1] != "ISO88591" {
		t.Fatalf("unexpected parse result: %#v", result)
	}
	if got := parseCharsetList(" CP437 LATIN1"); len(got) != 2 || got[1] != "LATIN1" {
		t.Fatalf("separator should come from the first byte: %#v", got)
	}
}

func TestSanitizeTelnetString(t *testing.T) {
	raw := []byte{0x01, 'H', 'i', 0x7f, '!'}
	if got := sanitizeTelnetString(raw); got != "Hi!" {
		t.Fatalf("unexpected sanitized string: %q", got)
	}
}

// pipeSession returns a session whose outbound bytes are discarded and a
// client end for writing input.
func pipeSession(t *testing.T) (*Session, net.Conn) {
	t.Helper()
	server, client := net.Pipe()
	go func() { _, _ = io.Copy(io.Discard, client) }()
	s := NewSession(server)
	t.Cleanup(func() {
		_ = s.Close()
		_ = client.Close()
	})
	return s, client
}

func readLine(t *testing.T, s *Session) string {
	t.Helper()
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := s.ReadLine()
		ch <- result{line, err}
	}()
	select {
	case r := <-ch:
		if r.err != nil {
			t.Fatalf("read line: %v", r.err)
		}
		return r.line
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for a line")
	}
	return ""
}

func TestSessionReadLineHandlesNegotiation(t *testing.T) {
	s, client := pipeSession(t)
	go func() {
		_, _ = client.Write([]byte{telnetIAC, telnetSB, optWindowSize, 0, 120, 0, 40, telnetIAC, telnetSE})
		_, _ = client.Write([]byte{telnetIAC, telnetSB, optTerminalType, ttypeIS, 'x', 't', 'e', 'r', 'm', telnetIAC, telnetSE})
		_, _ = client.Write([]byte("cret\x7fate 1 2\r\n"))
	}()
	if got := readLine(t, s); got != "create 1 2" {
		t.Fatalf("unexpected line %q", got)
	}
	if w, h := s.Size(); w != 120 || h != 40 {
		t.Fatalf("window size not applied: %dx%d", w, h)
	}
	if s.Terminal() != "XTERM" {
		t.Fatalf("terminal type not recorded: %q", s.Terminal())
	}
}

func TestSessionCharsetRequest(t *testing.T) {
	s, client := pipeSession(t)
	go func() {
		payload := append([]byte{telnetIAC, telnetSB, optCharset, charsetRequest}, ";KOI8-R;CP437"...)
		payload = append(payload, telnetIAC, telnetSE)
		_, _ = client.Write(payload)
		_, _ = client.Write([]byte{'c', 'a', 'f', 0x82, '\r', '\n'})
	}()
	if got := readLine(t, s); got != "café" {
		t.Fatalf("input should be decoded as CP437, got %q", got)
	}
	if s.Charset() != "CP437" {
		t.Fatalf("expected CP437, got %s", s.Charset())
	}
}

func TestSessionSetCharset(t *testing.T) {
	s, _ := pipeSession(t)
	if err := s.SetCharset("ebcdic"); err == nil {
		t.Fatalf("unknown charsets should be rejected")
	}
	if err := s.SetCharset("latin1"); err != nil {
		t.Fatalf("set charset: %v", err)
	}
	got := s.encode("é\n")
	if string(got) != "\xe9\r\n" {
		t.Fatalf("unexpected latin-1 output %q", got)
	}
}

func TestSessionUTF8BackspaceRemovesWholeRune(t *testing.T) {
	s, client := pipeSession(t)
	go func() {
		_, _ = client.Write([]byte("naïve\x08\x08\x08ive\r\n"))
	}()
	if got := readLine(t, s); got != "naive" {
		t.Fatalf("unexpected line %q", got)
	}
}
