package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/itehadironstore/steelbooks_backend/middlewares"
	"github.com/itehadironstore/steelbooks_backend/models"
	"github.com/itehadironstore/steelbooks_backend/utils"
)

func registerRoutes(r *gin.Engine) {
	r.POST("/auth/login", loginHandler)

	api := r.Group("/", middlewares.RequireAuth())
	{
		api.POST("/users", middlewares.RequireAdmin(), createUserHandler)
		api.GET("/invoices/:id/audits", middlewares.RequireAdmin(), listBalanceAuditsHandler)

		api.POST("/products", createProductHandler)
		api.GET("/products", listProductsHandler)

		api.POST("/customers", createCustomerHandler)
		api.GET("/customers/:id/ledger", customerLedgerHandler)

		api.POST("/invoices", createInvoiceHandler)
		api.GET("/invoices/:id", getInvoiceHandler)
		api.PUT("/invoices/:id/items/:itemID", updateInvoiceItemHandler)
		api.DELETE("/invoices/:id/items/:itemID", deleteInvoiceItemHandler)
		api.POST("/invoices/:id/payments", recordPaymentHandler)
		api.GET("/invoices/:id/payments", listPaymentsHandler)
		api.POST("/invoices/:id/returns", createReturnHandler)
		api.GET("/invoices/:id/returns", listReturnsHandler)
	}
}

// respondError maps domain sentinel errors onto HTTP statuses. Anything
// unrecognized is treated as a bad request rather than a 500; persistence
// failures inside the models surface as raw errors and still land here.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, utils.ErrorRecordNotFound):
		status = http.StatusNotFound
	case errors.Is(err, utils.ErrorInvalidAmount),
		errors.Is(err, utils.ErrorExceedsBalance),
		errors.Is(err, utils.ErrorExceedsReturnable),
		errors.Is(err, utils.ErrorMissingReason),
		errors.Is(err, utils.ErrorIneligible),
		errors.Is(err, utils.ErrorNotReturnable):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, utils.ErrorParse):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func pathId(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

type loginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func loginHandler(c *gin.Context) {
	var input loginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := models.AuthenticateUser(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	token, err := utils.JwtGenerate(user.ID, string(user.Role))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func createUserHandler(c *gin.Context) {
	var input models.NewUser
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := models.CreateUser(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func createProductHandler(c *gin.Context) {
	var input models.NewProduct
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	product, err := models.CreateProduct(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func listProductsHandler(c *gin.Context) {
	products, err := models.ListProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func createCustomerHandler(c *gin.Context) {
	var input models.NewCustomer
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	customer, err := models.CreateCustomer(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

func customerLedgerHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	fromDate, ok := dateQuery(c, "from")
	if !ok {
		return
	}
	toDate, ok := dateQuery(c, "to")
	if !ok {
		return
	}
	entries, err := models.GetCustomerLedger(c.Request.Context(), id, fromDate, toDate)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// dateQuery parses an optional YYYY-MM-DD query parameter.
func dateQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be YYYY-MM-DD"})
		return nil, false
	}
	return &t, true
}

func createInvoiceHandler(c *gin.Context) {
	var input models.NewInvoice
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	invoice, err := models.CreateInvoice(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

func getInvoiceHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	view, err := models.GetInvoiceView(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func updateInvoiceItemHandler(c *gin.Context) {
	invoiceId, ok := pathId(c, "id")
	if !ok {
		return
	}
	itemId, ok := pathId(c, "itemID")
	if !ok {
		return
	}
	var input models.UpdateInvoiceItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	invoice, err := models.UpdateInvoiceItem(c.Request.Context(), invoiceId, itemId, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func deleteInvoiceItemHandler(c *gin.Context) {
	invoiceId, ok := pathId(c, "id")
	if !ok {
		return
	}
	itemId, ok := pathId(c, "itemID")
	if !ok {
		return
	}
	invoice, err := models.DeleteInvoiceItem(c.Request.Context(), invoiceId, itemId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func recordPaymentHandler(c *gin.Context) {
	invoiceId, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input models.NewInvoicePayment
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	invoice, err := models.RecordPayment(c.Request.Context(), invoiceId, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

func listPaymentsHandler(c *gin.Context) {
	invoiceId, ok := pathId(c, "id")
	if !ok {
		return
	}
	payments, err := models.GetInvoicePayments(c.Request.Context(), invoiceId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

func createReturnHandler(c *gin.Context) {
	invoiceId, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input models.NewInvoiceReturn
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ret, err := models.CreateReturn(c.Request.Context(), invoiceId, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ret)
}

func listBalanceAuditsHandler(c *gin.Context) {
	invoiceId, ok := pathId(c, "id")
	if !ok {
		return
	}
	audits, err := models.ListBalanceAudits(c.Request.Context(), invoiceId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, audits)
}

func listReturnsHandler(c *gin.Context) {
	invoiceId, ok := pathId(c, "id")
	if !ok {
		return
	}
	returns, err := models.ListReturnsForInvoice(c.Request.Context(), invoiceId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, returns)
}
