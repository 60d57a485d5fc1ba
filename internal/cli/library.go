package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/shelfmateapp/shelfmate/internal/di/providers"
	"github.com/shelfmateapp/shelfmate/internal/domain"
	domainerrors "github.com/shelfmateapp/shelfmate/internal/errors"
	"github.com/shelfmateapp/shelfmate/internal/genre"
	"github.com/shelfmateapp/shelfmate/internal/library"
	"github.com/shelfmateapp/shelfmate/internal/media"
	"github.com/shelfmateapp/shelfmate/internal/search"
	"github.com/shelfmateapp/shelfmate/internal/social"
)

func (a *app) collator() genre.Collator {
	tag, err := invoke[language.Tag](a)
	if err != nil {
		tag = language.English
	}
	return genre.NewCollator(tag)
}

// loadScreen fetches userID's library. The returned close func releases the search index.
func (a *app) loadScreen(ctx context.Context, userID string, hidePrivate bool) (*library.Screen, func(), error) {
	client, err := invoke[*providers.APIClientHandle](a)
	if err != nil {
		return nil, nil, err
	}
	bus, err := a.bus()
	if err != nil {
		return nil, nil, err
	}
	log := a.log("library")
	index, err := search.NewBookIndex(log)
	if err != nil {
		return nil, nil, err
	}

	screen := library.NewScreen(userID, library.ScreenDeps{
		Fetcher:     client,
		Collator:    a.collator(),
		Index:       index,
		Emitter:     bus,
		Logger:      log,
		HidePrivate: hidePrivate,
	})
	release := func() { _ = index.Close() }
	if err := screen.Refresh(ctx); err != nil {
		release()
		return nil, nil, err
	}
	return screen, release, nil
}

func newLibraryCmd(a *app) *cobra.Command {
	var filter, query, userID string
	cmd := &cobra.Command{
		Use:   "library",
		Short: "Show a library grouped into Reading and genre sections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			_, self, err := a.signedIn(ctx)
			if err != nil {
				return err
			}
			mode, err := library.ParseFilterMode(filter)
			if err != nil {
				return err
			}

			target := self.BackendID
			if userID != "" && userID != self.BackendID {
				owner, err := a.openLibrary(ctx, userID)
				if err != nil {
					return err
				}
				target = owner.BackendID
			}

			screen, release, err := a.loadScreen(ctx, target, target != self.BackendID)
			if err != nil {
				return err
			}
			defer release()

			if query != "" {
				books, err := screen.Search(ctx, query)
				if err != nil {
					return err
				}
				return render(out(cmd), a.output, books, func(w io.Writer) error {
					if len(books) == 0 {
						fmt.Fprintf(w, "No books match %q\n", query)
					}
					for _, b := range books {
						printBookLine(w, b)
					}
					return nil
				})
			}

			if !screen.SetFilter(mode) && mode != library.FilterAll {
				a.log("cli").Info("filter unavailable, showing all books", "filter", mode)
			}
			state := screen.State()
			return render(out(cmd), a.output, state, func(w io.Writer) error {
				printSections(w, state)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "all", "all, private or loaned")
	cmd.Flags().StringVar(&query, "search", "", "full-text search over title, author and description")
	cmd.Flags().StringVar(&userID, "user", "", "show another user's library")
	return cmd
}

func printSections(w io.Writer, state library.State) {
	if len(library.Flatten(state.Sections)) == 0 {
		fmt.Fprintln(w, "No books yet")
		return
	}
	for i, s := range state.Sections {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (%d)\n", s.Title, len(s.Books))
		for _, b := range s.Books {
			printBookLine(w, b)
		}
	}
}

func printBookLine(w io.Writer, b domain.Book) {
	line := fmt.Sprintf("  %s  %s", b.ID, b.Title)
	if b.Author != "" {
		line += " by " + b.Author
	}
	if b.IsReading() && b.PageCount > 0 {
		line += fmt.Sprintf(" [%d%%]", int(b.Progress()*100))
	}
	if b.IsPrivate() {
		line += " (private)"
	}
	if b.OnLoan() {
		line += " (lent to " + b.LatestLoan().BorrowerName + ")"
	}
	fmt.Fprintln(w, line)
}

// ownBook fetches the signed-in user's library and returns one book from it.
func (a *app) ownBook(ctx context.Context, bookID string) (domain.Book, error) {
	_, self, err := a.signedIn(ctx)
	if err != nil {
		return domain.Book{}, err
	}
	screen, release, err := a.loadScreen(ctx, self.BackendID, false)
	if err != nil {
		return domain.Book{}, err
	}
	defer release()

	book, ok := screen.Book(bookID)
	if !ok {
		return domain.Book{}, domainerrors.NotFoundf("book %s not found in your library", bookID)
	}
	return book, nil
}

type bookFlags struct {
	title       string
	author      string
	publisher   string
	description string
	cover       string
	genre       string
	status      string
	pages       int
	currentPage int
	private     bool
}

func (f *bookFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.title, "title", "", "title")
	fs.StringVar(&f.author, "author", "", "author")
	fs.StringVar(&f.publisher, "publisher", "", "publisher")
	fs.StringVar(&f.description, "description", "", "description (HTML is converted to Markdown)")
	fs.StringVar(&f.cover, "cover", "", "cover image URL")
	fs.StringVar(&f.genre, "genre", "", "genre")
	fs.StringVar(&f.status, "status", "", "unread, reading or read")
	fs.IntVar(&f.pages, "pages", 0, "page count")
	fs.IntVar(&f.currentPage, "current-page", 0, "current page while reading")
	fs.BoolVar(&f.private, "private", false, "hide the book from other users")
}

// apply copies the flags the user set onto b.
func (f *bookFlags) apply(cmd *cobra.Command, b *domain.Book) {
	fs := cmd.Flags()
	set := func(name string, dst *string, v string) {
		if fs.Changed(name) {
			*dst = v
		}
	}
	set("title", &b.Title, f.title)
	set("author", &b.Author, f.author)
	set("publisher", &b.Publisher, f.publisher)
	set("description", &b.Description, f.description)
	set("cover", &b.CoverURL, f.cover)
	set("genre", &b.Genre, f.genre)
	if fs.Changed("status") {
		b.Status = domain.ReadingStatus(f.status)
	}
	if fs.Changed("pages") {
		b.PageCount = f.pages
	}
	if fs.Changed("current-page") {
		b.CurrentPage = f.currentPage
	}
	if fs.Changed("private") {
		b.Visibility = domain.BookPublic
		if f.private {
			b.Visibility = domain.BookPrivate
		}
	}
}

type bookDetail struct {
	Book     domain.Book `json:"book"`
	BlurHash string      `json:"coverBlurHash,omitempty"`
}

func newBookCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Add, edit, show or remove books",
	}

	var addFlags bookFlags
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a book to your library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, _, err := a.signedIn(cmd.Context()); err != nil {
				return err
			}
			svc, err := invoke[*library.Service](a)
			if err != nil {
				return err
			}
			var b domain.Book
			addFlags.apply(cmd, &b)
			created, err := svc.AddBook(cmd.Context(), b)
			if err != nil {
				return err
			}
			return render(out(cmd), a.output, created, func(w io.Writer) error {
				fmt.Fprintf(w, "Added %q (%s)\n", created.Title, created.ID)
				return nil
			})
		},
	}
	addFlags.register(add)

	var editFlags bookFlags
	edit := &cobra.Command{
		Use:   "edit <book-id>",
		Short: "Change fields of one of your books",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := a.ownBook(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			svc, err := invoke[*library.Service](a)
			if err != nil {
				return err
			}
			editFlags.apply(cmd, &book)
			updated, err := svc.UpdateBook(cmd.Context(), book)
			if err != nil {
				return err
			}
			return render(out(cmd), a.output, updated, func(w io.Writer) error {
				fmt.Fprintf(w, "Updated %q\n", updated.Title)
				return nil
			})
		},
	}
	editFlags.register(edit)

	show := &cobra.Command{
		Use:   "show <book-id>",
		Short: "Show one of your books",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			book, err := a.ownBook(ctx, args[0])
			if err != nil {
				return err
			}
			detail := bookDetail{Book: book}
			if book.CoverURL != "" {
				client, err := invoke[*providers.APIClientHandle](a)
				if err != nil {
					return err
				}
				hash, err := media.CoverPlaceholder(ctx, client.HTTPClient(), book.CoverURL)
				if err != nil {
					a.log("media").Debug("cover placeholder unavailable", "book_id", book.ID, "error", err)
				}
				detail.BlurHash = hash
			}
			return render(out(cmd), a.output, detail, func(w io.Writer) error {
				printBookDetail(w, detail)
				return nil
			})
		},
	}

	rm := &cobra.Command{
		Use:   "rm <book-id>",
		Short: "Remove one of your books",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := a.ownBook(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := a.confirm(cmd, fmt.Sprintf("Remove %q from your library?", book.Title)); err != nil {
				return err
			}
			svc, err := invoke[*library.Service](a)
			if err != nil {
				return err
			}
			if err := svc.DeleteBook(cmd.Context(), book.ID); err != nil {
				return err
			}
			return done(out(cmd), a.output, fmt.Sprintf("Removed %q", book.Title))
		},
	}

	cmd.AddCommand(add, edit, show, rm)
	return cmd
}

func printBookDetail(w io.Writer, d bookDetail) {
	b := d.Book
	fmt.Fprintln(w, b.Title)
	if b.Author != "" {
		fmt.Fprintf(w, "  author:     %s\n", b.Author)
	}
	if b.Publisher != "" {
		fmt.Fprintf(w, "  publisher:  %s\n", b.Publisher)
	}
	fmt.Fprintf(w, "  genre:      %s\n", b.GenreBucket())
	fmt.Fprintf(w, "  status:     %s", b.Status)
	if b.IsReading() && b.PageCount > 0 {
		fmt.Fprintf(w, " (page %d of %d)", b.CurrentPage, b.PageCount)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  visibility: %s\n", b.Visibility)
	if loan := b.LatestLoan(); loan != nil {
		fmt.Fprintf(w, "  last loan:  %s, %s, due %s\n", loan.BorrowerName, loan.Status, loan.ReturnDate.Format(time.DateOnly))
	}
	if d.BlurHash != "" {
		fmt.Fprintf(w, "  cover:      %s\n", d.BlurHash)
	}
	if b.Description != "" {
		fmt.Fprintf(w, "\n%s\n", b.Description)
	}
}

func newGenresCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "genres",
		Short: "List the genres you can pick from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, _, err := a.signedIn(cmd.Context()); err != nil {
				return err
			}
			svc, err := invoke[*library.Service](a)
			if err != nil {
				return err
			}
			genres, err := svc.Genres(cmd.Context())
			if err != nil {
				return err
			}
			return render(out(cmd), a.output, genres, func(w io.Writer) error {
				for _, g := range genres {
					fmt.Fprintln(w, g)
				}
				return nil
			})
		},
	}
}

func newLendCmd(a *app) *cobra.Command {
	var due string
	cmd := &cobra.Command{
		Use:   "lend <book-id> <borrower>",
		Short: "Record that you lent a book",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var dueAt time.Time
			if due != "" {
				t, err := time.ParseInLocation(time.DateOnly, due, time.Local)
				if err != nil {
					return domainerrors.Validationf("invalid due date %q (want YYYY-MM-DD)", due)
				}
				dueAt = t
			}
			book, err := a.ownBook(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			svc, err := invoke[*library.Service](a)
			if err != nil {
				return err
			}
			loan, err := svc.LendBook(cmd.Context(), book, args[1], dueAt)
			if err != nil {
				return err
			}
			return render(out(cmd), a.output, loan, func(w io.Writer) error {
				fmt.Fprintf(w, "Lent %q to %s until %s\n", book.Title, loan.BorrowerName, loan.ReturnDate.Local().Format(time.DateOnly))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&due, "due", "", "return date as YYYY-MM-DD (default 30 days from now)")
	return cmd
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show reading statistics for your library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			_, self, err := a.signedIn(ctx)
			if err != nil {
				return err
			}
			screen, release, err := a.loadScreen(ctx, self.BackendID, false)
			if err != nil {
				return err
			}
			defer release()

			st := library.ComputeStats(screen.Books(), time.Now(), a.collator())
			return render(out(cmd), a.output, st, func(w io.Writer) error {
				printStats(w, st)
				return nil
			})
		},
	}
}

func printStats(w io.Writer, st library.Stats) {
	fmt.Fprintf(w, "Books:        %d (%d private)\n", st.Total, st.Private)
	fmt.Fprintf(w, "Unread:       %d\n", st.ByStatus[domain.StatusUnread])
	fmt.Fprintf(w, "Reading:      %d\n", st.ByStatus[domain.StatusReading])
	fmt.Fprintf(w, "Read:         %d\n", st.ByStatus[domain.StatusRead])
	fmt.Fprintf(w, "Pages read:   %d\n", st.PagesRead)
	fmt.Fprintf(w, "Lent out:     %d (%d overdue)\n", st.ActiveLoans, st.Overdue)
	if len(st.TopGenres) > 0 {
		fmt.Fprintln(w, "Top genres:")
		for _, g := range st.TopGenres {
			fmt.Fprintf(w, "  %-20s %d\n", g.Genre, g.Count)
		}
	}
}

// openLibrary checks access to another user's library, turning refusals into their user-facing message.
func (a *app) openLibrary(ctx context.Context, userID string) (*domain.UserProfile, error) {
	svc, err := invoke[*social.Service](a)
	if err != nil {
		return nil, err
	}
	owner, err := svc.OpenLibrary(ctx, userID)
	if err != nil {
		if msg := social.AccessMessage(err); msg != "" {
			return nil, errors.New(msg)
		}
		return nil, err
	}
	return owner, nil
}
