package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"

	"github.com/shelfmateapp/shelfmate/internal/domain"
	"github.com/shelfmateapp/shelfmate/internal/genre"
)

var collator = genre.NewCollator(language.English)

func book(id string, status domain.ReadingStatus, g string) domain.Book {
	return domain.Book{ID: id, Title: id, Status: status, Genre: g, Visibility: domain.BookPublic}
}

func titles(sections []Section) []string {
	out := make([]string, 0, len(sections))
	for _, s := range sections {
		out = append(out, s.Title)
	}
	return out
}

func bookIDs(books []domain.Book) []string {
	out := make([]string, 0, len(books))
	for _, b := range books {
		out = append(out, b.ID)
	}
	return out
}

func TestCategorize_ReadingFirst(t *testing.T) {
	books := []domain.Book{
		book("z1", domain.StatusUnread, "Zoology"),
		book("r1", domain.StatusReading, "Zoology"),
		book("a1", domain.StatusRead, "Action"),
	}

	sections := Categorize(books, collator)
	assert.Equal(t, []string{"Reading", "Action", "Zoology"}, titles(sections))
	assert.Equal(t, []string{"r1"}, bookIDs(sections[0].Books))
}

func TestCategorize_ThreeBookScenario(t *testing.T) {
	books := []domain.Book{
		book("fantasy", domain.StatusUnread, "Fantasy"),
		book("current", domain.StatusReading, "Fantasy"),
		book("drama", domain.StatusUnread, "Drama"),
	}

	sections := Categorize(books, collator)
	assert.Equal(t, []string{"Reading", "Drama", "Fantasy"}, titles(sections))
	assert.Equal(t, []string{"current"}, bookIDs(sections[0].Books))
	assert.Equal(t, []string{"drama"}, bookIDs(sections[1].Books))
	assert.Equal(t, []string{"fantasy"}, bookIDs(sections[2].Books))
}

func TestCategorize_NoReadingSectionWhenEmpty(t *testing.T) {
	sections := Categorize([]domain.Book{book("a", domain.StatusUnread, "Poetry")}, collator)
	assert.Equal(t, []string{"Poetry"}, titles(sections))
}

func TestCategorize_OtherBucket(t *testing.T) {
	books := []domain.Book{
		book("blank", domain.StatusUnread, ""),
		book("spaces", domain.StatusUnread, "   "),
		book("mystery", domain.StatusUnread, "Mystery"),
	}

	sections := Categorize(books, collator)
	assert.Equal(t, []string{"Mystery", "Other"}, titles(sections))
	assert.Equal(t, []string{"blank", "spaces"}, bookIDs(sections[1].Books))
}

func TestCategorize_ReadingPreservesInputOrder(t *testing.T) {
	books := []domain.Book{
		book("c", domain.StatusReading, "Zoology"),
		book("a", domain.StatusReading, "Action"),
		book("b", domain.StatusReading, ""),
	}
	sections := Categorize(books, collator)
	assert.Len(t, sections, 1)
	assert.Equal(t, []string{"c", "a", "b"}, bookIDs(sections[0].Books))
}

func TestCategorize_GenreNamedReading(t *testing.T) {
	books := []domain.Book{
		book("g", domain.StatusUnread, "Reading"),
		book("a", domain.StatusUnread, "Art"),
		book("r", domain.StatusReading, "Art"),
	}
	sections := Categorize(books, collator)
	assert.Equal(t, []string{"Reading", "Art", "Reading"}, titles(sections))
	assert.Equal(t, KindReading, sections[0].Kind)
	assert.Equal(t, KindGenre, sections[2].Kind)
}

func TestCategorize_Idempotent(t *testing.T) {
	books := []domain.Book{
		book("1", domain.StatusUnread, "Horror"),
		book("2", domain.StatusReading, "Drama"),
		book("3", domain.StatusUnread, "drama"),
		book("4", domain.StatusRead, "Drama"),
		book("5", domain.StatusUnread, ""),
		book("6", domain.StatusReading, "Horror"),
	}

	first := Categorize(books, collator)
	second := Categorize(books, collator)
	assert.Equal(t, first, second)
	assert.Equal(t, first, Categorize(Flatten(first), collator))
}

func TestCategorize_DoesNotModifyInput(t *testing.T) {
	books := []domain.Book{book("b", domain.StatusUnread, "B"), book("a", domain.StatusUnread, "A")}
	_ = Categorize(books, collator)
	assert.Equal(t, "b", books[0].ID)
}

func TestCategorize_Empty(t *testing.T) {
	assert.Empty(t, Categorize(nil, collator))
}

func pending(bookID string) domain.Loan {
	return domain.Loan{BookID: bookID, BorrowerName: "Sam", Status: domain.LoanPending}
}

func returned(bookID string) domain.Loan {
	return domain.Loan{BookID: bookID, BorrowerName: "Sam", Status: domain.LoanReturned}
}

func filterFixture() []domain.Book {
	private := book("private", domain.StatusUnread, "Drama")
	private.Visibility = domain.BookPrivate

	lent := book("lent", domain.StatusReading, "Fantasy")
	lent.Loans = []domain.Loan{returned("lent"), pending("lent")}

	back := book("back", domain.StatusUnread, "Fantasy")
	back.Loans = []domain.Loan{pending("back"), returned("back")}

	plain := book("plain", domain.StatusUnread, "Action")

	return []domain.Book{private, lent, back, plain}
}

func TestApplyFilter_PrivateOnly(t *testing.T) {
	sections := ApplyFilter(Categorize(filterFixture(), collator), FilterPrivateOnly, collator)
	assert.Equal(t, []string{"Drama"}, titles(sections))
	for _, b := range Flatten(sections) {
		assert.Equal(t, domain.BookPrivate, b.Visibility)
	}
}

func TestApplyFilter_LoanedPendingOnlyUsesLatestLoan(t *testing.T) {
	sections := ApplyFilter(Categorize(filterFixture(), collator), FilterLoanedPendingOnly, collator)
	assert.Equal(t, []string{"Reading"}, titles(sections))
	assert.Equal(t, []string{"lent"}, bookIDs(Flatten(sections)))
	for _, b := range Flatten(sections) {
		assert.Equal(t, domain.LoanPending, b.LatestLoan().Status)
	}
}

func TestApplyFilter_All(t *testing.T) {
	original := Categorize(filterFixture(), collator)
	assert.Equal(t, original, ApplyFilter(original, FilterAll, collator))
}

func TestApplyFilter_ResortsSections(t *testing.T) {
	unsorted := []Section{
		{Title: "Zoology", Kind: KindGenre, Books: []domain.Book{book("z", domain.StatusUnread, "Zoology")}},
		{Title: "Reading", Kind: KindReading, Books: []domain.Book{book("r", domain.StatusReading, "")}},
		{Title: "Action", Kind: KindGenre, Books: []domain.Book{book("a", domain.StatusUnread, "Action")}},
	}
	assert.Equal(t, []string{"Reading", "Action", "Zoology"}, titles(ApplyFilter(unsorted, FilterAll, collator)))
}

func TestAvailableFilters(t *testing.T) {
	assert.Equal(t, []FilterMode{FilterAll, FilterPrivateOnly, FilterLoanedPendingOnly}, AvailableFilters(filterFixture()))
	assert.Equal(t, []FilterMode{FilterAll}, AvailableFilters([]domain.Book{book("a", domain.StatusUnread, "")}))
	assert.Equal(t, []FilterMode{FilterAll}, AvailableFilters(nil))
}

func TestParseFilterMode(t *testing.T) {
	for in, want := range map[string]FilterMode{
		"":                  FilterAll,
		"all":               FilterAll,
		"private":           FilterPrivateOnly,
		"privateOnly":       FilterPrivateOnly,
		"loaned":            FilterLoanedPendingOnly,
		"loanedPendingOnly": FilterLoanedPendingOnly,
	} {
		got, err := ParseFilterMode(in)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFilterMode("favorites")
	assert.Error(t, err)
}

func TestNormalizeDescription(t *testing.T) {
	assert.Equal(t, "plain text", NormalizeDescription("  plain text "))
	assert.Equal(t, "", NormalizeDescription(""))
	assert.Equal(t, "A **bold** tale.", NormalizeDescription("<p>A <strong>bold</strong> tale.</p>"))
}
