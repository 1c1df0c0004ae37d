package console

import (
	"bufio"
	"bytes"
	"fmt"
	"net"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

const (
	telnetIAC  byte = 255
	telnetDONT byte = 254
	telnetDO   byte = 253
	telnetWONT byte = 252
	telnetWILL byte = 251
	telnetSB   byte = 250
	telnetSE   byte = 240
)

const (
	optEcho         byte = 1
	optSuppressGA   byte = 3
	optTerminalType byte = 24
	optWindowSize   byte = 31
	optLineMode     byte = 34
	optCharset      byte = 42
)

// Sub-negotiation verbs for TERMINAL-TYPE and CHARSET.
const (
	ttypeIS         byte = 0
	ttypeSEND       byte = 1
	charsetRequest  byte = 1
	charsetAccepted byte = 2
	charsetRejected byte = 3
)

// DefaultCharset is used until the client negotiates or the designer picks
// another one.
const DefaultCharset = "UTF-8"

var (
	localOptions  = map[byte]bool{optSuppressGA: true, optCharset: true}
	remoteOptions = map[byte]bool{optTerminalType: true, optWindowSize: true}
)

type charsetInfo struct {
	name string
	cm   *charmap.Charmap
}

// Keys are normalizeToken forms.
var knownCharsets = map[string]charsetInfo{
	"UTF8":        {name: "UTF-8"},
	"CP437":       {name: "CP437", cm: charmap.CodePage437},
	"IBM437":      {name: "CP437", cm: charmap.CodePage437},
	"437":         {name: "CP437", cm: charmap.CodePage437},
	"ISO88591":    {name: "ISO-8859-1", cm: charmap.ISO8859_1},
	"LATIN1":      {name: "ISO-8859-1", cm: charmap.ISO8859_1},
	"ISO885915":   {name: "ISO-8859-15", cm: charmap.ISO8859_15},
	"CP1252":      {name: "WINDOWS-1252", cm: charmap.Windows1252},
	"WINDOWS1252": {name: "WINDOWS-1252", cm: charmap.Windows1252},
}

// CharsetNames lists the charsets a session can switch to.
func CharsetNames() []string {
	return []string{"UTF-8", "CP437", "ISO-8859-1", "ISO-8859-15", "WINDOWS-1252"}
}

func lookupCharset(name string) (charsetInfo, bool) {
	info, ok := knownCharsets[normalizeToken(name)]
	return info, ok
}

// normalizeToken upper-cases a charset name and drops punctuation so that
// "utf-8" and "UTF8" compare equal.
func normalizeToken(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// parseCharsetList splits a CHARSET REQUEST payload. The first byte is the
// separator chosen by the client.
func parseCharsetList(s string) []string {
	if s == "" {
		return nil
	}
	sep := s[:1]
	var out []string
	for _, part := range strings.Split(s[1:], sep) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func encodeWithCharmap(cm *charmap.Charmap, data []byte) []byte {
	out := make([]byte, 0, len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		data = data[size:]
		if b, ok := cm.EncodeRune(r); ok {
			out = append(out, b)
			continue
		}
		out = append(out, '?')
	}
	return out
}

func decodeWithCharmap(cm *charmap.Charmap, data []byte) string {
	var b strings.Builder
	b.Grow(len(data))
	for _, c := range data {
		b.WriteRune(cm.DecodeByte(c))
	}
	return b.String()
}

// sanitizeTelnetString keeps printable ASCII from a sub-negotiation payload.
func sanitizeTelnetString(raw []byte) string {
	var b strings.Builder
	for _, c := range raw {
		if c >= 0x20 && c < 0x7f {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// translateForTelnet converts bare LF to CRLF and escapes IAC bytes.
func translateForTelnet(data []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(len(data) + 8)
	var prev byte
	for _, b := range data {
		switch b {
		case '\n':
			if prev != '\r' {
				buf.WriteByte('\r')
			}
			buf.WriteByte('\n')
		case telnetIAC:
			buf.WriteByte(telnetIAC)
			buf.WriteByte(telnetIAC)
		default:
			buf.WriteByte(b)
		}
		prev = b
	}
	return buf.Bytes()
}

// Session is a designer's telnet connection. ReadLine belongs to the
// session's read loop; WriteString may be called from any goroutine.
type Session struct {
	conn   net.Conn
	reader *bufio.Reader

	mu      sync.Mutex
	width   int
	height  int
	term    string
	charset charsetInfo
	local   map[byte]bool
	remote  map[byte]bool
}

// NewSession wraps conn and starts option negotiation.
func NewSession(conn net.Conn) *Session {
	s := &Session{
		conn:    conn,
		reader:  bufio.NewReader(conn),
		width:   80,
		height:  24,
		charset: knownCharsets["UTF8"],
		local:   make(map[byte]bool),
		remote:  make(map[byte]bool),
	}
	s.handshake()
	return s
}

func (s *Session) handshake() {
	s.offer(telnetWILL, optSuppressGA)
	s.offer(telnetWILL, optCharset)
	_ = s.writeCommand(telnetWONT, optEcho)
	_ = s.writeCommand(telnetDONT, optLineMode)
	s.offer(telnetDO, optTerminalType)
	s.offer(telnetDO, optWindowSize)
}

// offer sends WILL/DO and records the option as requested so the client's
// acknowledgement is not answered again.
func (s *Session) offer(cmd, opt byte) {
	s.mu.Lock()
	if cmd == telnetWILL {
		s.local[opt] = true
	} else {
		s.remote[opt] = true
	}
	s.mu.Unlock()
	_ = s.writeCommand(cmd, opt)
}

func (s *Session) writeCommand(cmd, opt byte) error {
	return s.writeRaw([]byte{telnetIAC, cmd, opt})
}

func (s *Session) writeSub(opt byte, payload []byte) error {
	frame := make([]byte, 0, len(payload)+5)
	frame = append(frame, telnetIAC, telnetSB, opt)
	for _, b := range payload {
		if b == telnetIAC {
			frame = append(frame, telnetIAC)
		}
		frame = append(frame, b)
	}
	frame = append(frame, telnetIAC, telnetSE)
	return s.writeRaw(frame)
}

func (s *Session) writeRaw(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.conn.Write(payload)
	return err
}

// encode turns UTF-8 text into the session's wire bytes.
func (s *Session) encode(msg string) []byte {
	s.mu.Lock()
	cm := s.charset.cm
	s.mu.Unlock()
	data := []byte(msg)
	if cm != nil {
		data = encodeWithCharmap(cm, data)
	}
	return translateForTelnet(data)
}

func (s *Session) decode(data []byte) string {
	s.mu.Lock()
	cm := s.charset.cm
	s.mu.Unlock()
	if cm != nil {
		return decodeWithCharmap(cm, data)
	}
	return strings.ToValidUTF8(string(data), "")
}

// WriteString sends msg in the session charset.
func (s *Session) WriteString(msg string) error {
	data := s.encode(msg)
	return s.writeRaw(data)
}

// ReadLine returns the next line of input with telnet commands stripped and
// backspaces applied.
func (s *Session) ReadLine() (string, error) {
	var buf bytes.Buffer
	for {
		b, err := s.reader.ReadByte()
		if err != nil {
			return "", err
		}
		switch b {
		case '\r':
			if next, err := s.reader.Peek(1); err == nil && (next[0] == '\n' || next[0] == 0) {
				_, _ = s.reader.ReadByte()
			}
			return s.decode(buf.Bytes()), nil
		case '\n':
			return s.decode(buf.Bytes()), nil
		case 0x08, 0x7f:
			s.erase(&buf)
		case 0x00:
		case telnetIAC:
			if err := s.handleIAC(&buf); err != nil {
				return "", err
			}
		default:
			buf.WriteByte(b)
		}
	}
}

// erase drops the last character; in UTF-8 that may span several bytes.
func (s *Session) erase(buf *bytes.Buffer) {
	data := buf.Bytes()
	if len(data) == 0 {
		return
	}
	s.mu.Lock()
	single := s.charset.cm != nil
	s.mu.Unlock()
	n := 1
	if !single {
		_, n = utf8.DecodeLastRune(data)
	}
	buf.Truncate(len(data) - n)
}

func (s *Session) handleIAC(buf *bytes.Buffer) error {
	cmd, err := s.reader.ReadByte()
	if err != nil {
		return err
	}
	switch cmd {
	case telnetIAC:
		buf.WriteByte(telnetIAC)
	case telnetDO, telnetDONT, telnetWILL, telnetWONT:
		opt, err := s.reader.ReadByte()
		if err != nil {
			return err
		}
		s.negotiate(cmd, opt)
	case telnetSB:
		return s.handleSubnegotiation()
	}
	return nil
}

func (s *Session) negotiate(cmd, opt byte) {
	s.mu.Lock()
	var reply byte
	switch cmd {
	case telnetDO:
		switch {
		case !localOptions[opt]:
			reply = telnetWONT
		case !s.local[opt]:
			s.local[opt] = true
			reply = telnetWILL
		}
	case telnetDONT:
		if s.local[opt] {
			delete(s.local, opt)
			reply = telnetWONT
		}
	case telnetWILL:
		switch {
		case !remoteOptions[opt]:
			reply = telnetDONT
		case !s.remote[opt]:
			s.remote[opt] = true
			reply = telnetDO
		}
	case telnetWONT:
		if s.remote[opt] {
			delete(s.remote, opt)
			reply = telnetDONT
		}
	}
	s.mu.Unlock()

	if reply != 0 {
		_ = s.writeCommand(reply, opt)
	}
	switch {
	case cmd == telnetDO && opt == optCharset:
		list := ";" + strings.Join(CharsetNames(), ";")
		_ = s.writeSub(optCharset, append([]byte{charsetRequest}, list...))
	case cmd == telnetWILL && opt == optTerminalType:
		_ = s.writeSub(optTerminalType, []byte{ttypeSEND})
	}
}

func (s *Session) handleSubnegotiation() error {
	opt, err := s.reader.ReadByte()
	if err != nil {
		return err
	}
	payload := make([]byte, 0, 16)
	for {
		b, err := s.reader.ReadByte()
		if err != nil {
			return err
		}
		if b != telnetIAC {
			payload = append(payload, b)
			continue
		}
		next, err := s.reader.ReadByte()
		if err != nil {
			return err
		}
		if next == telnetSE {
			break
		}
		if next == telnetIAC {
			payload = append(payload, telnetIAC)
		}
	}

	switch opt {
	case optTerminalType:
		if len(payload) > 1 && payload[0] == ttypeIS {
			s.mu.Lock()
			s.term = strings.ToUpper(sanitizeTelnetString(payload[1:]))
			s.mu.Unlock()
		}
	case optWindowSize:
		if len(payload) >= 4 {
			s.mu.Lock()
			s.width = int(payload[0])<<8 | int(payload[1])
			s.height = int(payload[2])<<8 | int(payload[3])
			s.mu.Unlock()
		}
	case optCharset:
		s.handleCharset(payload)
	}
	return nil
}

func (s *Session) handleCharset(payload []byte) {
	if len(payload) == 0 {
		return
	}
	switch payload[0] {
	case charsetAccepted:
		_ = s.SetCharset(sanitizeTelnetString(payload[1:]))
	case charsetRequest:
		list := string(payload[1:])
		list = strings.TrimPrefix(list, "[TTABLE]")
		for _, name := range parseCharsetList(list) {
			if info, ok := lookupCharset(name); ok {
				s.setCharset(info)
				_ = s.writeSub(optCharset, append([]byte{charsetAccepted}, name...))
				return
			}
		}
		_ = s.writeSub(optCharset, []byte{charsetRejected})
	}
}

func (s *Session) setCharset(info charsetInfo) {
	s.mu.Lock()
	s.charset = info
	s.mu.Unlock()
}

// SetCharset switches the encoding used for both directions.
func (s *Session) SetCharset(name string) error {
	info, ok := lookupCharset(name)
	if !ok {
		return fmt.Errorf("unsupported charset %q (try %s)", name, strings.Join(CharsetNames(), ", "))
	}
	s.setCharset(info)
	return nil
}

// Charset returns the canonical name of the active encoding.
func (s *Session) Charset() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.charset.name
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

// Size reports the NAWS window size, 80x24 until the client sends one.
func (s *Session) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

func (s *Session) Terminal() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.term
}
