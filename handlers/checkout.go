package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/hashicorp/go-multierror"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/gspot/checkout"
	"github.com/ray-remotestate/gspot/media"
	"github.com/ray-remotestate/gspot/models"
	"github.com/ray-remotestate/gspot/session"
	"github.com/ray-remotestate/gspot/utils"
)

const receiptField = "receipt"

type receiptView struct {
	Name       string `json:"name,omitempty"`
	UploadedTo string `json:"uploaded_url,omitempty"`
}

type checkoutView struct {
	Step          checkout.Step    `json:"step"`
	Details       checkout.Details `json:"details"`
	Valid         bool             `json:"valid"`
	Problems      []string         `json:"problems,omitempty"`
	PaymentMethod string           `json:"payment_method"`
	Receipt       *receiptView     `json:"receipt,omitempty"`
	CartTotal     decimal.Decimal  `json:"cart_total"`
}

func viewCheckout(sess *session.Session) checkoutView {
	st := sess.Checkout
	v := checkoutView{
		Step:          st.Step,
		Details:       st.Details,
		Problems:      problems(checkout.Validate(st.Details)),
		PaymentMethod: st.PaymentMethod,
		CartTotal:     sess.Cart.TotalPrice(),
	}
	v.Valid = len(v.Problems) == 0
	if rc := st.StagedReceipt(); rc != nil || st.ReceiptURL != "" {
		v.Receipt = &receiptView{UploadedTo: st.ReceiptURL}
		if rc != nil {
			v.Receipt.Name = rc.Name
		}
	}
	return v
}

// problems flattens a validation error into its messages.
func problems(err error) []string {
	if err == nil {
		return nil
	}
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(merr.Errors))
	for _, e := range merr.Errors {
		out = append(out, e.Error())
	}
	return out
}

// respondCheckoutError maps checkout failures to statuses. It returns false
// for errors it does not recognise.
func respondCheckoutError(w http.ResponseWriter, err error) bool {
	var (
		merr      *multierror.Error
		uploadErr *checkout.UploadError
		placeErr  *checkout.PlaceError
	)
	switch {
	case errors.Is(err, checkout.ErrWrongStep):
		utils.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, checkout.ErrEmptyCart):
		utils.RespondError(w, http.StatusBadRequest, "Your cart is empty.")
	case errors.Is(err, checkout.ErrReceiptsDisabled):
		utils.RespondError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, checkout.ErrUnknownPaymentMethod):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &merr):
		utils.RespondJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":    "please complete the required fields",
			"problems": problems(merr),
		})
	case errors.As(err, &uploadErr):
		utils.RespondError(w, http.StatusBadGateway, uploadErr.Notice())
	case errors.As(err, &placeErr):
		utils.RespondError(w, placeStatus(placeErr.Err), placeErr.Notice)
	default:
		return false
	}
	return true
}

func placeStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, models.ErrInsufficientStock), errors.Is(err, models.ErrMissingIdentifiers):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (h *Handler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	withSession(w, r, func(sess *session.Session) {
		utils.RespondJSON(w, http.StatusOK, viewCheckout(sess))
	})
}

// UpdateDetails saves the form. Incomplete details are accepted and reported
// in problems; only Proceed enforces them.
func (h *Handler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	var req checkout.Details
	if !decode(w, r, &req) {
		return
	}
	withSession(w, r, func(sess *session.Session) {
		if err := sess.Checkout.SetDetails(req); err != nil {
			respondCheckoutError(w, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, viewCheckout(sess))
	})
}

func (h *Handler) ProceedToPayment(w http.ResponseWriter, r *http.Request) {
	withSession(w, r, func(sess *session.Session) {
		if sess.Cart.IsEmpty() {
			respondCheckoutError(w, checkout.ErrEmptyCart)
			return
		}
		if err := sess.Checkout.Proceed(); err != nil {
			respondCheckoutError(w, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, viewCheckout(sess))
	})
}

func (h *Handler) BackToDetails(w http.ResponseWriter, r *http.Request) {
	withSession(w, r, func(sess *session.Session) {
		if err := sess.Checkout.Back(); err != nil {
			respondCheckoutError(w, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, viewCheckout(sess))
	})
}

func (h *Handler) SelectPaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentMethod string `json:"payment_method"`
	}
	if !decode(w, r, &req) {
		return
	}
	withSession(w, r, func(sess *session.Session) {
		pm, err := h.Checkout.SelectPaymentMethod(r.Context(), sess.Checkout, req.PaymentMethod)
		if err != nil {
			if !respondCheckoutError(w, err) {
				logrus.WithError(err).Error("failed to select payment method")
				utils.RespondError(w, http.StatusInternalServerError, "failed to select payment method")
			}
			return
		}
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"checkout":       viewCheckout(sess),
			"payment_method": pm,
		})
	})
}

// UploadReceipt stages a payment screenshot. It is uploaded when the order
// is placed.
func (h *Handler) UploadReceipt(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, media.MaxReceiptSize+1<<20)
	file, header, err := r.FormFile(receiptField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.RespondError(w, http.StatusRequestEntityTooLarge, "receipt must be 10MB or smaller")
			return
		}
		utils.RespondError(w, http.StatusBadRequest, "receipt file is required")
		return
	}
	defer file.Close()

	if header.Size > media.MaxReceiptSize {
		utils.RespondError(w, http.StatusRequestEntityTooLarge, "receipt must be 10MB or smaller")
		return
	}
	contentType, _, _ := mime.ParseMediaType(header.Header.Get("Content-Type"))
	if !media.AcceptedTypes[contentType] {
		utils.RespondError(w, http.StatusUnsupportedMediaType, "receipt must be a JPEG, PNG, WebP or HEIC image")
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "failed to read receipt")
		return
	}

	withSession(w, r, func(sess *session.Session) {
		err := h.Checkout.StageReceipt(sess.Checkout, checkout.Receipt{
			Name:        header.Filename,
			ContentType: contentType,
			Data:        data,
		})
		if err != nil {
			respondCheckoutError(w, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, viewCheckout(sess))
	})
}

func (h *Handler) RemoveReceipt(w http.ResponseWriter, r *http.Request) {
	withSession(w, r, func(sess *session.Session) {
		sess.Checkout.RemoveReceipt()
		utils.RespondJSON(w, http.StatusOK, viewCheckout(sess))
	})
}

// PlaceOrder holds the session for the whole placement so a repeated
// submit waits and then finds the checkout already reset.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	withSession(w, r, func(sess *session.Session) {
		res, err := h.Checkout.PlaceOrder(r.Context(), sess.Checkout, sess.Cart)
		if err != nil {
			if !respondCheckoutError(w, err) {
				logrus.WithError(err).Error("failed to place order")
				utils.RespondError(w, http.StatusInternalServerError, checkout.NoticeGeneric)
			}
			return
		}
		utils.RespondJSON(w, http.StatusCreated, res)
	})
}
