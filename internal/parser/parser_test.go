package parser

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dubplan/backend/internal/models"
)

const sampleScript = "Postavy:\nANDREJ\nEVA\nPETER KOLAR\nEVA MALA\n\nNINA\nJAN\nMARTIN\nPETER\nJOZO\nJAN4\nJUANA DE ARAG\nDE LA PARRA\n\n" +
	"00:01:33----------\n" +
	"00:01:33\tANDREJ\t(dychy) Kde si bola?\n" +
	"EVA\tNebola som doma.\n" +
	"PETER KOLAR\t00:02:12\tPridem zajtra\n" +
	"JAN,MARTIN,PETER,JOZO\tNeprideme tam ani my\n" +
	"----------\n" +
	"JUANA DE ARAG\tKde si\n" +
	"JAN4\tNeviem\n" +
	"DE LA PARRA\tJa som stale doma\n" +
	"EVA MALA\t00:03:40\tNebolo to mozne"

func TestCleanName(t *testing.T) {
	cases := map[string]string{
		"ANDREJ":        "ANDREJ",
		"ANDREJ:":       "ANDREJ",
		"ANDREJ::":      "ANDREJ",
		"PETER KOLAR":   "PETER KOLAR",
		"JAN V":         "JAN",
		"ŠTEFAN ČIERNY": "ŠTEFAN ČIERNY",
		"Ab":            "",
		"Peter":         "",
		"AB":            "",
		"INT":           "",
		"TITULOK":       "",
		"EVA Mala":      "",
		"  ":            "",
	}
	for in, want := range cases {
		assert.Equal(t, want, CleanName(in), "CleanName(%q)", in)
	}
}

func TestCleanNameIdempotent(t *testing.T) {
	for _, in := range []string{"ANDREJ::", "JAN V", "EVA: K", "PETER  KOLAR:", "AB C D", "ŽOFIA", "x", "JAN4"} {
		once := CleanName(in)
		assert.Equal(t, once, CleanName(once), "input %q", in)
	}
}

func TestExtractRoster(t *testing.T) {
	roster := ExtractRoster([]string{sampleScript}, RosterOptions{}, zerolog.Nop())
	require.Len(t, roster, 12)
	assert.Equal(t, "JUANA DE ARAG", roster[0])
	assert.Equal(t, []string{"DE LA PARRA", "PETER KOLAR"}, []string(roster[1:3]))
	assert.Equal(t, []string{"EVA", "JAN"}, []string(roster[10:]))
}

func TestExtractRosterNormalizesCandidates(t *testing.T) {
	chunks := []string{"Intro\nPostavy:\nMARTA:\nJAN K\nEVA\tnieco\nlowercase\nAB\n00:00:01 start\nIGNORED"}
	roster := ExtractRoster(chunks, RosterOptions{}, zerolog.Nop())
	assert.Equal(t, Roster{"MARTA", "JAN"}, roster)
}

func TestExtractRosterMissingHeader(t *testing.T) {
	roster := ExtractRoster([]string{"ANDREJ\tAhoj"}, RosterOptions{}, zerolog.Nop())
	assert.Empty(t, roster)
}

func TestExtractRosterCustomHeaderAndLimit(t *testing.T) {
	chunks := []string{"Cast:\nMARTA\nJURAJ\nKAROL"}
	roster := ExtractRoster(chunks, RosterOptions{Header: "Cast:", MaxLines: 2}, zerolog.Nop())
	assert.Equal(t, Roster{"JURAJ", "MARTA"}, roster)
}

func TestParseSampleScript(t *testing.T) {
	res := Parse([]string{sampleScript}, RosterOptions{}, zerolog.Nop())
	assert.Equal(t, 2, res.Segments)

	bySegment := map[int][]models.ScriptLine{}
	for _, l := range res.Lines {
		bySegment[l.Segment] = append(bySegment[l.Segment], l)
	}

	seg1 := bySegment[1]
	require.NotEmpty(t, seg1)
	assert.True(t, seg1[0].IsSegmentBoundary)
	assert.Equal(t, "00:01:33", seg1[0].Timecode)
	assert.Equal(t, "1", seg1[0].SegmentMarker())

	andrej := findSpeaker(t, seg1, "ANDREJ")
	assert.Equal(t, "00:01:33", andrej.Timecode)
	assert.Equal(t, "(dychy)", andrej.SceneMarker)
	assert.Equal(t, "Kde si bola?", andrej.Text)

	peter := findSpeaker(t, seg1, "PETER KOLAR")
	assert.Equal(t, "00:02:12", peter.Timecode)
	assert.Equal(t, "Pridem zajtra", peter.Text)

	var group []models.ScriptLine
	for _, l := range seg1 {
		if l.Text == "Neprideme tam ani my" {
			group = append(group, l)
		}
	}
	require.Len(t, group, 4)
	for i, name := range []string{"JAN", "MARTIN", "PETER", "JOZO"} {
		assert.Equal(t, name, group[i].Speaker)
		assert.Equal(t, MethodRosterMulti, group[i].Method)
	}

	seg2 := bySegment[2]
	assert.Equal(t, "Kde si", findSpeaker(t, seg2, "JUANA DE ARAG").Text)
	assert.Equal(t, "Neviem", findSpeaker(t, seg2, "JAN4").Text)
	assert.Equal(t, "Ja som stale doma", findSpeaker(t, seg2, "DE LA PARRA").Text)
	evaMala := findSpeaker(t, seg2, "EVA MALA")
	assert.Equal(t, "00:03:40", evaMala.Timecode)
	assert.Equal(t, "Nebolo to mozne", evaMala.Text)
}

func TestClassifierBoundaryIncrements(t *testing.T) {
	c := NewClassifier(nil, zerolog.Nop())
	lines := []string{"-----", "ANDREJ\tAhoj", "———————", "–––––", "text"}
	want := []int{1, 1, 2, 3, 3}
	for i, l := range lines {
		rows := c.ClassifyLine(l)
		require.NotEmpty(t, rows)
		assert.Equal(t, want[i], rows[0].Segment, "line %q", l)
	}
}

func TestClassifierPureBoundaryStillEmitted(t *testing.T) {
	c := NewClassifier(nil, zerolog.Nop())
	rows := c.ClassifyLine("----------")
	require.Len(t, rows, 1)
	assert.Equal(t, models.ScriptLine{Segment: 1, IsSegmentBoundary: true, Method: MethodNone}, rows[0])
}

func TestClassifierFallbackPatterns(t *testing.T) {
	cases := []struct {
		line     string
		speaker  string
		method   string
		text     string
		marker   string
		timecode string
	}{
		{"MARTA (smiech)\tTo je dobre", "MARTA", MethodPatternMarker, "To je dobre", "(smiech)", ""},
		{"MARTA - Ideme", "MARTA", MethodPatternDash, "Ideme", "", ""},
		{"MARTA: Ideme", "MARTA", MethodPatternColon, "Ideme", "", ""},
		{"MARTA\tIdeme", "MARTA", MethodPatternSimple, "Ideme", "", ""},
		{"ŠTEFAN ČIERNY\tDobrý deň", "ŠTEFAN ČIERNY", MethodPatternSimple, "Dobrý deň", "", ""},
		{"JURAJ:: Ahoj", "JURAJ", MethodPatternColon, "Ahoj", "", ""},
		{"EVA MALA\t00:03:40\tNebolo to mozne", "EVA MALA", MethodPatternSimple, "Nebolo to mozne", "", "00:03:40"},
		{"NINA\t00:01:00\tAhoj", "NINA", MethodPatternSimple, "Ahoj", "", "00:01:00"},
		{"MIŠA\t00:02:00\tAhoj", "MIŠA", MethodPatternSimple, "Ahoj", "", "00:02:00"},
		{"MARTA\tA00:01:00\tAhoj", "MARTA", MethodPatternSimple, "Ahoj", "", "A00:01:00"},
		{"MARTA\tA 00:01:00\tAhoj", "MARTA", MethodPatternSimple, "Ahoj", "", "A 00:01:00"},
	}
	for _, tc := range cases {
		c := NewClassifier(nil, zerolog.Nop())
		rows := c.ClassifyLine(tc.line)
		require.Len(t, rows, 1, tc.line)
		assert.Equal(t, tc.speaker, rows[0].Speaker, tc.line)
		assert.Equal(t, tc.method, rows[0].Method, tc.line)
		assert.Equal(t, tc.text, rows[0].Text, tc.line)
		assert.Equal(t, tc.marker, rows[0].SceneMarker, tc.line)
		assert.Equal(t, tc.timecode, rows[0].Timecode, tc.line)
	}
}

func TestClassifierRosterNamesBeforeTimecode(t *testing.T) {
	c := NewClassifier(newRoster([]string{"ANDREJ", "EVA", "EVA MALA", "MARTA"}), zerolog.Nop())

	rows := c.ClassifyLine("EVA MALA\t00:03:40\tNebolo to mozne")
	require.Len(t, rows, 1)
	assert.Equal(t, "EVA MALA", rows[0].Speaker)
	assert.Equal(t, MethodRosterSingle, rows[0].Method)
	assert.Equal(t, "00:03:40", rows[0].Timecode)
	assert.Equal(t, "Nebolo to mozne", rows[0].Text)

	rows = c.ClassifyLine("ANDREJ, EVA\t00:01:00\tAhoj vsetci")
	require.Len(t, rows, 2)
	for i, name := range []string{"ANDREJ", "EVA"} {
		assert.Equal(t, name, rows[i].Speaker)
		assert.Equal(t, MethodRosterMulti, rows[i].Method)
		assert.Equal(t, "00:01:00", rows[i].Timecode)
		assert.Equal(t, "Ahoj vsetci", rows[i].Text)
	}

	rows = c.ClassifyLine("EVA, MARTA, ANDREJ\tA 00:02:00\tIdeme")
	require.Len(t, rows, 3)
	assert.Equal(t, "MARTA", rows[1].Speaker)
	assert.Equal(t, "A 00:02:00", rows[1].Timecode)
}

func TestClassifierRosterSingleConsumesDash(t *testing.T) {
	withRoster := NewClassifier(Roster{"PETER KOLAR"}, zerolog.Nop())
	rows := withRoster.ClassifyLine("PETER KOLAR - povedal")
	require.Len(t, rows, 1)
	assert.Equal(t, MethodRosterSingle, rows[0].Method)
	assert.Equal(t, "povedal", rows[0].Text)

	without := NewClassifier(nil, zerolog.Nop())
	rows = without.ClassifyLine("PETER KOLAR - povedal")
	require.Len(t, rows, 1)
	assert.Equal(t, MethodPatternDash, rows[0].Method)
	assert.Equal(t, "povedal", rows[0].Text)
}

func TestClassifierFallbackMulti(t *testing.T) {
	c := NewClassifier(nil, zerolog.Nop())
	rows := c.ClassifyLine("A 00:10:00 MARTA, JURAJ\tPoďme")
	require.Len(t, rows, 2)
	for i, name := range []string{"MARTA", "JURAJ"} {
		assert.Equal(t, name, rows[i].Speaker)
		assert.Equal(t, MethodPatternMulti, rows[i].Method)
		assert.Equal(t, "A 00:10:00", rows[i].Timecode)
		assert.Equal(t, "Poďme", rows[i].Text)
	}
}

func TestClassifierRejectedFallbackLeavesSpeakerEmpty(t *testing.T) {
	c := NewClassifier(nil, zerolog.Nop())
	rows := c.ClassifyLine("TITULOK Koniec prvej časti")
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0].Speaker)
	assert.Equal(t, MethodNone, rows[0].Method)
	assert.Equal(t, "TITULOK Koniec prvej časti", rows[0].SceneMarker)
	assert.Empty(t, rows[0].Text)
}

func TestClassifierSceneKeywordAndParentheticals(t *testing.T) {
	c := NewClassifier(nil, zerolog.Nop())
	rows := c.ClassifyLine("INT. KUCHYŇA - DEŇ")
	require.Len(t, rows, 1)
	assert.Equal(t, "INT. KUCHYŇA - DEŇ", rows[0].SceneMarker)
	assert.Empty(t, rows[0].Speaker)

	rows = c.ClassifyLine("00:05:00\tMARTA\t(ticho) Počkaj (smiech) (ticho)")
	require.Len(t, rows, 1)
	assert.Equal(t, "(ticho) (smiech)", rows[0].SceneMarker)
	assert.Equal(t, "Počkaj", rows[0].Text)
}

func TestClassifierRosterSingleRequiresBoundary(t *testing.T) {
	c := NewClassifier(Roster{"EVA"}, zerolog.Nop())
	rows := c.ClassifyLine("EVANJELIA\tnieco")
	require.Len(t, rows, 1)
	assert.Equal(t, "EVANJELIA", rows[0].Speaker)
	assert.Equal(t, MethodPatternSimple, rows[0].Method)

	rows = c.ClassifyLine("EVA: Ahoj")
	require.Len(t, rows, 1)
	assert.Equal(t, "EVA", rows[0].Speaker)
	assert.Equal(t, MethodRosterSingle, rows[0].Method)
	assert.Equal(t, "Ahoj", rows[0].Text)
}

func TestClassifierUnresolvedLine(t *testing.T) {
	c := NewClassifier(nil, zerolog.Nop())
	rows := c.ClassifyLine("iba obyčajný text bez mena")
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0].Speaker)
	assert.Equal(t, "iba obyčajný text bez mena", rows[0].Text)
	assert.Nil(t, c.ClassifyLine("   "))
}

func findSpeaker(t *testing.T, lines []models.ScriptLine, speaker string) models.ScriptLine {
	t.Helper()
	for _, l := range lines {
		if l.Speaker == speaker {
			return l
		}
	}
	t.Fatalf("speaker %q not found", speaker)
	return models.ScriptLine{}
}

func TestParseNormalizesDecomposedInput(t *testing.T) {
	decomposed := "Postavy:\nS\u030cTEFAN\n\n----------\nS\u030cTEFAN\tDobry den"
	res := Parse([]string{decomposed}, RosterOptions{}, zerolog.Nop())

	require.Equal(t, Roster{"\u0160TEFAN"}, res.Roster)
	row := res.Lines[len(res.Lines)-1]
	assert.Equal(t, "\u0160TEFAN", row.Speaker)
	assert.Equal(t, 1, row.Segment)
	assert.Equal(t, MethodRosterSingle, row.Method)
	assert.Equal(t, "Dobry den", row.Text)
}
