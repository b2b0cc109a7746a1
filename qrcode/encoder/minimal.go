package encoder

import (
	"fmt"
	"math"
	"strings"

	symbolgo "github.com/symbolgo/symbolgo"
	"github.com/symbolgo/symbolgo/qrcode/decoder"
)

// versionSize identifies one of the three version classes that share
// character count bit lengths.
type versionSize int

const (
	versionSmall  versionSize = iota // versions 1-9
	versionMedium                    // versions 10-26
	versionLarge                     // versions 27-40
)

// MinimalEncoder computes a minimum-bit-length segmentation of a string
// across character sets and the four data encoding modes.
//
// In multi language content the most compact representation is selected
// using ECI modes. For example the most compact representation of the
// string "إא" is ECI(UTF-8),BYTE(arabic_aleph,hebrew_aleph),
// while "إإא" is most compactly represented with two ECIs
// as ECI(ISO-8859-6),BYTE(arabic_aleph,arabic_aleph),
// ECI(ISO-8859-8),BYTE(hebrew_aleph).
type MinimalEncoder struct {
	stringToEncode       []rune
	isGS1                bool
	encoders             []*CharsetEncoder
	priorityEncoderIndex int
	ecLevel              decoder.ErrorCorrectionLevel
}

// NewMinimalEncoder builds the character set encoder list for the given
// input. priorityCharset may be empty; when it names a supported charset,
// that charset is used to encode any character it can represent.
func NewMinimalEncoder(stringToEncode, priorityCharset string, isGS1 bool, ecLevel decoder.ErrorCorrectionLevel) (*MinimalEncoder, error) {
	runes := []rune(stringToEncode)
	me := &MinimalEncoder{stringToEncode: runes, isGS1: isGS1, ecLevel: ecLevel}

	// Room for the ISO-8859 charsets 1 through 15; -11 and -12 have no
	// encoder, and ISO-8859-16 is not tried.
	var isoEncoders [15]*CharsetEncoder
	isoEncoders[0] = newISOEncoder(0) // seed with ISO-8859-1
	needUnicodeEncoder := strings.HasPrefix(priorityCharset, "UTF")

	for i := 0; i < len(runes); i++ {
		cnt := 0
		j := 0
		for ; j < 15; j++ {
			if isoEncoders[j] != nil {
				cnt++
				if isoEncoders[j].CanEncode(runes[i]) {
					break
				}
			}
		}

		if cnt == 13 { // all 13 ISO-8859 encoders are in: we need all. Can stop looking further.
			break
		}

		if j >= 15 { // no encoder found so far; admit the first that fits
			for j = 0; j < 15; j++ {
				if j != 11 && isoEncoders[j] == nil { // ISO-8859-12 doesn't exist
					if ce := newISOEncoder(j); ce != nil && ce.CanEncode(runes[i]) {
						isoEncoders[j] = ce
						break
					}
				}
			}
			if j >= 15 {
				if !newUTF16BEEncoder().CanEncode(runes[i]) {
					return nil, fmt.Errorf("%w: cannot encode %q at position %d in input %q",
						symbolgo.ErrUnencodable, runes[i], i, stringToEncode)
				}
				needUnicodeEncoder = true
			}
		}
	}

	numberOfEncoders := 0
	for j := 0; j < 15; j++ {
		if isoEncoders[j] != nil {
			if _, ok := isoEncoders[j].ECI(); ok {
				numberOfEncoders++
			} else {
				needUnicodeEncoder = true
			}
		}
	}

	if numberOfEncoders == 1 && !needUnicodeEncoder {
		me.encoders = []*CharsetEncoder{isoEncoders[0]}
	} else {
		me.encoders = make([]*CharsetEncoder, 0, numberOfEncoders+2)
		for j := 0; j < 15; j++ {
			if isoEncoders[j] != nil {
				if _, ok := isoEncoders[j].ECI(); ok {
					me.encoders = append(me.encoders, isoEncoders[j])
				}
			}
		}
		me.encoders = append(me.encoders, newUTF8Encoder(), newUTF16BEEncoder())
	}

	me.priorityEncoderIndex = -1
	if priorityCharset != "" {
		for i, enc := range me.encoders {
			if enc.Name() == priorityCharset {
				me.priorityEncoderIndex = i
				break
			}
		}
	}
	return me, nil
}

// Encode computes the minimal segmentation of stringToEncode. When version
// is nil the algorithm solves for the three version classes and picks the
// smallest fitting solution.
func Encode(stringToEncode string, version *decoder.Version, priorityCharset string, isGS1 bool, ecLevel decoder.ErrorCorrectionLevel) (*ResultList, error) {
	me, err := NewMinimalEncoder(stringToEncode, priorityCharset, isGS1, ecLevel)
	if err != nil {
		return nil, err
	}
	return me.encode(version)
}

func (me *MinimalEncoder) encode(version *decoder.Version) (*ResultList, error) {
	if len(me.stringToEncode) == 0 {
		return nil, fmt.Errorf("%w: empty input", symbolgo.ErrWriter)
	}

	if version == nil { // compute minimal encoding trying the three version classes
		versions := [3]*decoder.Version{
			versionForSize(versionSmall),
			versionForSize(versionMedium),
			versionForSize(versionLarge),
		}
		var results [3]*ResultList
		for i, v := range versions {
			result, err := me.encodeSpecificVersion(v)
			if err != nil {
				return nil, err
			}
			results[i] = result
		}
		smallestSize := math.MaxInt32
		smallestResult := -1
		for i := 0; i < 3; i++ {
			size := results[i].Size()
			if WillFit(size, versions[i], me.ecLevel) && size < smallestSize {
				smallestSize = size
				smallestResult = i
			}
		}
		if smallestResult < 0 {
			return nil, symbolgo.ErrDataTooBig
		}
		return results[smallestResult], nil
	}

	// compute minimal encoding for the given version
	result, err := me.encodeSpecificVersion(version)
	if err != nil {
		return nil, err
	}
	if !WillFit(result.Size(), versionForSize(sizeOfVersion(version)), me.ecLevel) {
		return nil, fmt.Errorf("%w for version %d", symbolgo.ErrDataTooBig, version.Number)
	}
	return result, nil
}

func sizeOfVersion(version *decoder.Version) versionSize {
	if version.Number <= 9 {
		return versionSmall
	}
	if version.Number <= 26 {
		return versionMedium
	}
	return versionLarge
}

// versionForSize returns the largest version of a version class, the probe
// version the graph is solved against.
func versionForSize(size versionSize) *decoder.Version {
	number := 40
	switch size {
	case versionSmall:
		number = 9
	case versionMedium:
		number = 26
	}
	version, _ := decoder.GetVersionForNumber(number)
	return version
}

func isNumeric(c rune) bool {
	return c >= '0' && c <= '9'
}

func isDoubleByteKanji(c rune) bool {
	return IsOnlyDoubleByteKanji(string(c))
}

func isAlphanumeric(c rune) bool {
	return GetAlphanumericCode(int(c)) != -1
}

// compactedOrdinal maps the four data modes onto the last graph dimension.
func compactedOrdinal(mode decoder.Mode) int {
	switch mode {
	case decoder.ModeKanji:
		return 0
	case decoder.ModeAlphanumeric:
		return 1
	case decoder.ModeNumeric:
		return 2
	case decoder.ModeByte:
		return 3
	}
	panic(fmt.Sprintf("encoder: illegal mode %s", mode))
}

// edge is one graph edge: it encodes characterLength characters starting at
// fromPosition in the mode and charset of the vertex it leads to.
// cachedTotalSize is the bit length of the whole path from the source up to
// and including this edge.
type edge struct {
	mode                decoder.Mode
	fromPosition        int
	charsetEncoderIndex int
	characterLength     int
	previous            *edge
	cachedTotalSize     int
}

func (me *MinimalEncoder) newEdge(mode decoder.Mode, from, charsetEncoderIndex, characterLength int, previous *edge, version *decoder.Version) *edge {
	e := &edge{
		mode:                mode,
		fromPosition:        from,
		charsetEncoderIndex: charsetEncoderIndex,
		characterLength:     characterLength,
		previous:            previous,
	}
	if mode != decoder.ModeByte && previous != nil {
		// inherit the encoding if not of type BYTE
		e.charsetEncoderIndex = previous.charsetEncoderIndex
	}

	size := 0
	if previous != nil {
		size = previous.cachedTotalSize
	}

	needECI := mode == decoder.ModeByte &&
		((previous == nil && e.charsetEncoderIndex != 0) || // at the beginning and charset is not ISO-8859-1
			(previous != nil && e.charsetEncoderIndex != previous.charsetEncoderIndex))

	if previous == nil || mode != previous.mode || needECI {
		size += 4 + mode.CharacterCountBits(version)
	}
	switch mode {
	case decoder.ModeKanji:
		size += 13
	case decoder.ModeAlphanumeric:
		if characterLength == 1 {
			size += 6
		} else {
			size += 11
		}
	case decoder.ModeNumeric:
		switch characterLength {
		case 1:
			size += 4
		case 2:
			size += 7
		default:
			size += 10
		}
	case decoder.ModeByte:
		size += 8 * me.encoders[e.charsetEncoderIndex].EncodedLength(
			string(me.stringToEncode[from:from+characterLength]))
		if needECI {
			size += 4 + 8 // the ECI assignment numbers for ISO-8859-x, UTF-8 and UTF-16BE are all 8 bit long
		}
	}
	e.cachedTotalSize = size
	return e
}

// addEdge relaxes on insert: each (position, charset, mode) bucket keeps
// only the smallest edge, first seen winning ties.
func addEdge(edges [][][]*edge, position int, e *edge) {
	vertexIndex := position + e.characterLength
	bucket := edges[vertexIndex][e.charsetEncoderIndex]
	k := compactedOrdinal(e.mode)
	if bucket[k] == nil || bucket[k].cachedTotalSize > e.cachedTotalSize {
		bucket[k] = e
	}
}

// addEdges emits all outgoing edges for the vertex at position from with
// the given surviving predecessor edge.
func (me *MinimalEncoder) addEdges(version *decoder.Version, edges [][][]*edge, from int, previous *edge) {
	start := 0
	end := len(me.encoders)
	if me.priorityEncoderIndex >= 0 && me.encoders[me.priorityEncoderIndex].CanEncode(me.stringToEncode[from]) {
		start = me.priorityEncoderIndex
		end = me.priorityEncoderIndex + 1
	}

	for i := start; i < end; i++ {
		if me.encoders[i].CanEncode(me.stringToEncode[from]) {
			addEdge(edges, from, me.newEdge(decoder.ModeByte, from, i, 1, previous, version))
		}
	}

	if isDoubleByteKanji(me.stringToEncode[from]) {
		addEdge(edges, from, me.newEdge(decoder.ModeKanji, from, 0, 1, previous, version))
	}

	inputLength := len(me.stringToEncode)
	if isAlphanumeric(me.stringToEncode[from]) {
		length := 1
		if from+1 < inputLength && isAlphanumeric(me.stringToEncode[from+1]) {
			length = 2
		}
		addEdge(edges, from, me.newEdge(decoder.ModeAlphanumeric, from, 0, length, previous, version))
	}

	if isNumeric(me.stringToEncode[from]) {
		length := 1
		if from+1 < inputLength && isNumeric(me.stringToEncode[from+1]) {
			length = 2
			if from+2 < inputLength && isNumeric(me.stringToEncode[from+2]) {
				length = 3
			}
		}
		addEdge(edges, from, me.newEdge(decoder.ModeNumeric, from, 0, length, previous, version))
	}
}

// encodeSpecificVersion solves the shortest path over the
// (position, charset, mode) vertex lattice for one probe version.
//
// A vertex represents a tuple of a position in the input, a mode and a
// character encoding, where position 0 denotes the position left of the
// first character. An edge leading to a vertex encodes one or more of the
// characters left of that position in the mode and encoding of the vertex.
// Processing the vertices in order of position, each bucket keeps only its
// smallest incoming edge before its outgoing edges are emitted; at the end
// the smallest edge into any vertex at the final position is the solution.
func (me *MinimalEncoder) encodeSpecificVersion(version *decoder.Version) (*ResultList, error) {
	inputLength := len(me.stringToEncode)

	// The last dimension encodes the modes KANJI, ALPHANUMERIC, NUMERIC
	// and BYTE via compactedOrdinal.
	edges := make([][][]*edge, inputLength+1)
	for i := range edges {
		edges[i] = make([][]*edge, len(me.encoders))
		for j := range edges[i] {
			edges[i][j] = make([]*edge, 4)
		}
	}
	me.addEdges(version, edges, 0, nil)

	for i := 1; i < inputLength; i++ {
		for j := range me.encoders {
			for k := 0; k < 4; k++ {
				if edges[i][j][k] != nil {
					me.addEdges(version, edges, i, edges[i][j][k])
				}
			}
		}
	}

	minimalJ := -1
	minimalK := -1
	minimalSize := math.MaxInt32
	for j := range me.encoders {
		for k := 0; k < 4; k++ {
			if e := edges[inputLength][j][k]; e != nil && e.cachedTotalSize < minimalSize {
				minimalSize = e.cachedTotalSize
				minimalJ = j
				minimalK = k
			}
		}
	}
	if minimalJ < 0 {
		return nil, fmt.Errorf("%w: internal error: failed to encode %q",
			symbolgo.ErrWriter, string(me.stringToEncode))
	}
	return me.postProcess(edges[inputLength][minimalJ][minimalK], version), nil
}

// Segment is one node of a minimal solution, in encoding order.
type Segment struct {
	Mode                decoder.Mode
	FromPosition        int
	CharsetEncoderIndex int
	CharacterLength     int
}

// ResultList is the ordered segment list of a minimal solution together
// with the probe version it was solved against.
type ResultList struct {
	segments []Segment
	version  *decoder.Version
	me       *MinimalEncoder
}

// postProcess reconstructs the segment list from the solution edge:
// adjacent edges of the same mode and charset collapse into one segment, an
// ECI segment precedes every byte run that switches charset, GS1 markers
// are inserted when requested, and a terminator closes the list.
func (me *MinimalEncoder) postProcess(solution *edge, version *decoder.Version) *ResultList {
	result := &ResultList{version: version, me: me}

	var reversed []Segment
	length := 0
	current := solution
	for current != nil {
		length += current.characterLength
		previous := current.previous

		needECI := current.mode == decoder.ModeByte &&
			((previous == nil && current.charsetEncoderIndex != 0) ||
				(previous != nil && current.charsetEncoderIndex != previous.charsetEncoderIndex))

		if previous == nil || previous.mode != current.mode || needECI {
			reversed = append(reversed, Segment{current.mode, current.fromPosition, current.charsetEncoderIndex, length})
			length = 0
		}
		if needECI {
			reversed = append(reversed, Segment{decoder.ModeECI, current.fromPosition, current.charsetEncoderIndex, 0})
		}
		current = previous
	}
	for i := len(reversed) - 1; i >= 0; i-- {
		result.segments = append(result.segments, reversed[i])
	}

	if me.isGS1 {
		if result.segments[0].Mode != decoder.ModeECI {
			haveECI := false
			for _, s := range result.segments {
				if s.Mode == decoder.ModeECI {
					haveECI = true
					break
				}
			}
			if haveECI {
				// prepend a default character set ECI
				result.segments = append([]Segment{{decoder.ModeECI, 0, 0, 0}}, result.segments...)
			}
		}

		if result.segments[0].Mode != decoder.ModeECI {
			// prepend a FNC1_FIRST_POSITION
			result.segments = append([]Segment{{decoder.ModeFNC1FirstPosition, 0, 0, 0}}, result.segments...)
		} else {
			// insert a FNC1_FIRST_POSITION after the ECI
			tail := append([]Segment{{decoder.ModeFNC1FirstPosition, 0, 0, 0}}, result.segments[1:]...)
			result.segments = append(result.segments[:1], tail...)
		}
	}

	// Terminator according to "8.4.8 Terminator"
	result.segments = append(result.segments, Segment{decoder.ModeTerminator, len(me.stringToEncode), 0, 0})
	return result
}

// Segments returns the segments in encoding order.
func (rl *ResultList) Segments() []Segment {
	return rl.segments
}

// Size returns the solution size in bits.
func (rl *ResultList) Size() int {
	total := 0
	for _, s := range rl.segments {
		total += rl.segmentSize(s)
	}
	return total
}

func (rl *ResultList) segmentSize(s Segment) int {
	size := 4 + s.Mode.CharacterCountBits(rl.version)
	switch s.Mode {
	case decoder.ModeKanji:
		size += 13 * s.CharacterLength
	case decoder.ModeAlphanumeric:
		size += (s.CharacterLength / 2) * 11
		if s.CharacterLength%2 == 1 {
			size += 6
		}
	case decoder.ModeNumeric:
		size += (s.CharacterLength / 3) * 10
		switch s.CharacterLength % 3 {
		case 1:
			size += 4
		case 2:
			size += 7
		}
	case decoder.ModeByte:
		size += 8 * rl.CharacterCountIndicator(s)
	case decoder.ModeECI:
		size += 8 // the ECI assignment numbers for ISO-8859-x, UTF-8 and UTF-16BE are all 8 bit long
	}
	return size
}

// CharacterCountIndicator returns the value of the character count field
// for a segment; for BYTE mode this is the encoded byte length rather than
// the character count.
func (rl *ResultList) CharacterCountIndicator(s Segment) int {
	if s.Mode == decoder.ModeByte {
		return rl.me.encoders[s.CharsetEncoderIndex].EncodedLength(
			string(rl.me.stringToEncode[s.FromPosition : s.FromPosition+s.CharacterLength]))
	}
	return s.CharacterLength
}

// CharsetName returns the charset name of a segment's encoder.
func (rl *ResultList) CharsetName(s Segment) string {
	return rl.me.encoders[s.CharsetEncoderIndex].Name()
}

// Version returns the smallest version within the solved version class
// that fits the solution at its error correction level.
func (rl *ResultList) Version() *decoder.Version {
	versionNumber := rl.version.Number
	lowerLimit := 27
	upperLimit := 40
	switch sizeOfVersion(rl.version) {
	case versionSmall:
		lowerLimit, upperLimit = 1, 9
	case versionMedium:
		lowerLimit, upperLimit = 10, 26
	}

	size := rl.Size()
	// increase version if needed
	for versionNumber < upperLimit {
		v, _ := decoder.GetVersionForNumber(versionNumber)
		if WillFit(size, v, rl.me.ecLevel) {
			break
		}
		versionNumber++
	}
	// shrink version if possible
	for versionNumber > lowerLimit {
		v, _ := decoder.GetVersionForNumber(versionNumber - 1)
		if !WillFit(size, v, rl.me.ecLevel) {
			break
		}
		versionNumber--
	}
	version, _ := decoder.GetVersionForNumber(versionNumber)
	return version
}

// String renders the solution as "MODE(text),..." with non-printable
// characters dotted; ECI segments show the charset name.
func (rl *ResultList) String() string {
	var sb strings.Builder
	for i, s := range rl.segments {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(s.Mode.String())
		sb.WriteString("(")
		if s.Mode == decoder.ModeECI {
			sb.WriteString(rl.CharsetName(s))
		} else {
			sb.WriteString(makePrintable(string(rl.me.stringToEncode[s.FromPosition : s.FromPosition+s.CharacterLength])))
		}
		sb.WriteString(")")
	}
	return sb.String()
}

func makePrintable(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r < 32 || r > 126 {
			sb.WriteRune('.')
		} else {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
