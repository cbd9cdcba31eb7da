package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/lending/internal/catalogimport"
	"github.com/MarkoPoloResearchLab/lending/pkg/library"
)

type httpHandler struct {
	logger  *zap.Logger
	service *library.Service
}

type createLibraryRequest struct {
	LateFee decimal.Decimal        `json:"late_fee"`
	Books   []catalogimport.Record `json:"books"`
}

type addMemberRequest struct {
	Name         string           `json:"name"`
	Balance      decimal.Decimal  `json:"balance"`
	DiscountRate *decimal.Decimal `json:"discount_rate"`
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type editionRequest struct {
	Edition string `json:"edition"`
}

type borrowRequest struct {
	Title   string `json:"title"`
	Edition string `json:"edition"`
}

type bookView struct {
	Title         string         `json:"title"`
	Authors       []string       `json:"authors"`
	PublishedYear int            `json:"published_year"`
	RentalFee     string         `json:"rental_fee"`
	Editions      map[string]int `json:"editions"`
}

type loanView struct {
	Title   string    `json:"title"`
	Edition string    `json:"edition"`
	DueAt   time.Time `json:"due_at"`
}

type memberView struct {
	Name         string     `json:"name"`
	Balance      string     `json:"balance"`
	FeePolicy    string     `json:"fee_policy"`
	DiscountRate string     `json:"discount_rate,omitempty"`
	LibraryID    string     `json:"library_id,omitempty"`
	Loans        []loanView `json:"loans"`
}

type chargeView struct {
	RentalFee   string `json:"rental_fee"`
	LatePenalty string `json:"late_penalty"`
	Total       string `json:"total"`
}

func (handler *httpHandler) handleCreateLibrary(ctx *gin.Context) {
	var request createLibraryRequest
	if !bindJSON(ctx, &request) {
		return
	}
	lateFee, err := library.NewLateFeePercentage(request.LateFee)
	if err != nil {
		handler.fail(ctx, "create library", err)
		return
	}
	books := make([]*library.Book, 0, len(request.Books))
	for index, record := range request.Books {
		book, err := record.Book()
		if err != nil {
			handler.fail(ctx, "create library", fmt.Errorf("%w: record %d: %w", catalogimport.ErrInvalidRecord, index+1, err))
			return
		}
		books = append(books, book)
	}
	id, err := handler.service.CreateLibrary(ctx.Request.Context(), books, lateFee)
	if err != nil {
		handler.fail(ctx, "create library", err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"library_id": id.String(), "books": len(books)})
}

func (handler *httpHandler) handleSearch(ctx *gin.Context) {
	title := strings.TrimSpace(ctx.Query("title"))
	author := strings.TrimSpace(ctx.Query("author"))
	switch {
	case title != "":
		book, found, err := handler.service.SearchByTitle(ctx.Request.Context(), title)
		if err != nil {
			handler.fail(ctx, "search by title", err)
			return
		}
		if !found {
			ctx.JSON(http.StatusOK, gin.H{"books": []bookView{}})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"books": []bookView{newBookView(book)}})
	case author != "":
		books, err := handler.service.SearchByAuthor(ctx.Request.Context(), author)
		if err != nil {
			handler.fail(ctx, "search by author", err)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"books": newBookViews(books)})
	default:
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_query", "title or author query parameter is required"))
	}
}

func (handler *httpHandler) handleListBooks(ctx *gin.Context) {
	books, err := handler.service.Books(ctx.Request.Context())
	if err != nil {
		handler.fail(ctx, "list books", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"books": newBookViews(books)})
}

func (handler *httpHandler) handleAddBook(ctx *gin.Context) {
	var record catalogimport.Record
	if !bindJSON(ctx, &record) {
		return
	}
	book, err := record.Book()
	if err != nil {
		handler.fail(ctx, "add book", err)
		return
	}
	if err := handler.service.AddBook(ctx.Request.Context(), book); err != nil {
		handler.fail(ctx, "add book", err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"book": newBookView(book)})
}

func (handler *httpHandler) handleGetBook(ctx *gin.Context) {
	book, err := handler.service.Book(ctx.Request.Context(), ctx.Param("title"))
	if err != nil {
		handler.fail(ctx, "get book", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"book": newBookView(book)})
}

func (handler *httpHandler) handleRemoveBook(ctx *gin.Context) {
	if err := handler.service.RemoveBook(ctx.Request.Context(), ctx.Param("title")); err != nil {
		handler.fail(ctx, "remove book", err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (handler *httpHandler) handleAddEdition(ctx *gin.Context) {
	var request editionRequest
	if !bindJSON(ctx, &request) {
		return
	}
	edition, err := library.NewEditionID(request.Edition)
	if err != nil {
		handler.fail(ctx, "add edition", err)
		return
	}
	title := ctx.Param("title")
	if err := handler.service.AddEdition(ctx.Request.Context(), title, edition); err != nil {
		handler.fail(ctx, "add edition", err)
		return
	}
	handler.respondBook(ctx, title)
}

func (handler *httpHandler) handleRemoveEdition(ctx *gin.Context) {
	edition, err := library.NewEditionID(ctx.Param("edition"))
	if err != nil {
		handler.fail(ctx, "remove edition", err)
		return
	}
	title := ctx.Param("title")
	if err := handler.service.RemoveEdition(ctx.Request.Context(), title, edition); err != nil {
		handler.fail(ctx, "remove edition", err)
		return
	}
	handler.respondBook(ctx, title)
}

func (handler *httpHandler) handleListMembers(ctx *gin.Context) {
	members, err := handler.service.Members(ctx.Request.Context())
	if err != nil {
		handler.fail(ctx, "list members", err)
		return
	}
	views := make([]memberView, 0, len(members))
	for _, member := range members {
		views = append(views, newMemberView(member))
	}
	ctx.JSON(http.StatusOK, gin.H{"members": views})
}

func (handler *httpHandler) handleAddMember(ctx *gin.Context) {
	var request addMemberRequest
	if !bindJSON(ctx, &request) {
		return
	}
	member, err := buildMember(request)
	if err != nil {
		handler.fail(ctx, "add member", err)
		return
	}
	if err := handler.service.AddMember(ctx.Request.Context(), member); err != nil {
		handler.fail(ctx, "add member", err)
		return
	}
	handler.respondMember(ctx, http.StatusCreated, member.Name())
}

func (handler *httpHandler) handleGetMember(ctx *gin.Context) {
	name, ok := handler.memberName(ctx)
	if !ok {
		return
	}
	handler.respondMember(ctx, http.StatusOK, name)
}

func (handler *httpHandler) handleRemoveMember(ctx *gin.Context) {
	name, ok := handler.memberName(ctx)
	if !ok {
		return
	}
	if err := handler.service.RemoveMember(ctx.Request.Context(), name); err != nil {
		handler.fail(ctx, "remove member", err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (handler *httpHandler) handleDeposit(ctx *gin.Context) {
	name, ok := handler.memberName(ctx)
	if !ok {
		return
	}
	var request amountRequest
	if !bindJSON(ctx, &request) {
		return
	}
	if err := handler.service.Deposit(ctx.Request.Context(), name, request.Amount); err != nil {
		handler.fail(ctx, "deposit", err)
		return
	}
	handler.respondMember(ctx, http.StatusOK, name)
}

func (handler *httpHandler) handleBorrow(ctx *gin.Context) {
	name, ok := handler.memberName(ctx)
	if !ok {
		return
	}
	var request borrowRequest
	if !bindJSON(ctx, &request) {
		return
	}
	edition, err := library.NewEditionID(request.Edition)
	if err != nil {
		handler.fail(ctx, "borrow", err)
		return
	}
	loan, err := handler.service.Borrow(ctx.Request.Context(), name, request.Title, edition)
	if err != nil {
		handler.fail(ctx, "borrow", err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"loan": newLoanView(loan)})
}

func (handler *httpHandler) handleQuote(ctx *gin.Context) {
	name, ok := handler.memberName(ctx)
	if !ok {
		return
	}
	title := ctx.Param("title")
	charge, err := handler.service.Quote(ctx.Request.Context(), name, title)
	if err != nil {
		handler.fail(ctx, "quote", err)
		return
	}
	remaining, err := handler.service.RemainingDue(ctx.Request.Context(), name, title)
	if err != nil {
		handler.fail(ctx, "quote", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"charge":                newChargeView(charge),
		"remaining_due_seconds": int64(remaining / time.Second),
	})
}

func (handler *httpHandler) handleReturn(ctx *gin.Context) {
	name, ok := handler.memberName(ctx)
	if !ok {
		return
	}
	charge, err := handler.service.Return(ctx.Request.Context(), name, ctx.Param("title"))
	if err != nil {
		handler.fail(ctx, "return", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"charge": newChargeView(charge)})
}

func (handler *httpHandler) memberName(ctx *gin.Context) (library.MemberName, bool) {
	name, err := library.NewMemberName(ctx.Param("name"))
	if err != nil {
		handler.fail(ctx, "member name", err)
		return library.MemberName{}, false
	}
	return name, true
}

func (handler *httpHandler) respondBook(ctx *gin.Context, title string) {
	book, err := handler.service.Book(ctx.Request.Context(), title)
	if err != nil {
		handler.fail(ctx, "get book", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"book": newBookView(book)})
}

func (handler *httpHandler) respondMember(ctx *gin.Context, status int, name library.MemberName) {
	member, err := handler.service.Member(ctx.Request.Context(), name)
	if err != nil {
		handler.fail(ctx, "get member", err)
		return
	}
	ctx.JSON(status, gin.H{"member": newMemberView(member)})
}

// fail writes the mapped error body; only unexpected failures are logged.
func (handler *httpHandler) fail(ctx *gin.Context, action string, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		handler.logger.Error(action+" failed", zap.Error(err))
		ctx.JSON(status, errorResponse(code, "internal error"))
		return
	}
	ctx.JSON(status, errorResponse(code, err.Error()))
}

func bindJSON(ctx *gin.Context, target any) bool {
	if err := ctx.ShouldBindJSON(target); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_json", err.Error()))
		return false
	}
	return true
}

func buildMember(request addMemberRequest) (*library.Member, error) {
	name, err := library.NewMemberName(request.Name)
	if err != nil {
		return nil, err
	}
	if request.Balance.IsNegative() {
		return nil, fmt.Errorf("%w: opening balance must not be negative", library.ErrInvalidAmount)
	}
	if request.DiscountRate == nil {
		return library.NewMember(name, request.Balance), nil
	}
	rate, err := library.NewDiscountRate(*request.DiscountRate)
	if err != nil {
		return nil, err
	}
	return library.NewDiscountedMember(name, request.Balance, rate), nil
}

func newBookViews(books []*library.Book) []bookView {
	views := make([]bookView, 0, len(books))
	for _, book := range books {
		views = append(views, newBookView(book))
	}
	return views
}

func newBookView(book *library.Book) bookView {
	editions := make(map[string]int)
	for edition, stock := range book.Editions() {
		editions[edition.String()] = stock
	}
	return bookView{
		Title:         book.Title(),
		Authors:       book.Authors(),
		PublishedYear: book.PublishedYear(),
		RentalFee:     book.RentalFee().StringFixed(2),
		Editions:      editions,
	}
}

func newMemberView(member *library.Member) memberView {
	view := memberView{
		Name:      member.Name().String(),
		Balance:   member.Balance().StringFixed(2),
		FeePolicy: member.FeePolicy().Kind().String(),
		Loans:     make([]loanView, 0, member.BorrowedCount()),
	}
	if rate, ok := member.FeePolicy().DiscountRate(); ok {
		view.DiscountRate = rate.Decimal().String()
	}
	if id, ok := member.LibraryID(); ok {
		view.LibraryID = id.String()
	}
	for _, loan := range member.Loans() {
		view.Loans = append(view.Loans, newLoanView(loan))
	}
	return view
}

func newLoanView(loan library.Loan) loanView {
	return loanView{
		Title:   loan.Title(),
		Edition: loan.Edition().String(),
		DueAt:   loan.DueAt().UTC(),
	}
}

func newChargeView(charge library.Charge) chargeView {
	return chargeView{
		RentalFee:   charge.RentalFee.StringFixed(2),
		LatePenalty: charge.LatePenalty.StringFixed(2),
		Total:       charge.Total.StringFixed(2),
	}
}
