package gateways

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"testing"
)

func signPaytm(body []byte, key string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestPaytmVerifySignature(t *testing.T) {
	g := Paytm{MerchantKey: "mkey"}
	body := []byte("ORDERID=ord_1&TXNID=txn_1")

	if !g.VerifySignature(body, signPaytm(body, "mkey")) {
		t.Fatal("valid checksum rejected")
	}
	if g.VerifySignature(body, signPaytm(body, "wrong")) {
		t.Fatal("checksum from wrong key accepted")
	}
	if g.VerifySignature(body, "") {
		t.Fatal("missing checksum accepted")
	}
}

func TestPaytmNormalize(t *testing.T) {
	form := url.Values{}
	form.Set("ORDERID", "ord_9")
	form.Set("TXNID", "txn_9")
	form.Set("TXNAMOUNT", "499.00")
	form.Set("STATUS", "TXN_SUCCESS")
	form.Set("PAYMENTMODE", "NB")
	form.Set("EMAIL", "s@t.in")
	form.Set("RESPCODE", "01")

	payment, err := Paytm{}.Normalize([]byte(form.Encode()))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if payment.OrderID != "ord_9" || payment.PaymentID != "txn_9" {
		t.Fatalf("unexpected ids: %q / %q", payment.OrderID, payment.PaymentID)
	}
	if payment.Amount == nil || *payment.Amount != 49900 {
		t.Fatalf("rupees not converted to paise: %v", payment.Amount)
	}
	if payment.Status != "TXN_SUCCESS" {
		t.Fatalf("unexpected status %q", payment.Status)
	}
	if payment.Customer.Email == nil || *payment.Customer.Email != "s@t.in" {
		t.Fatalf("unexpected email: %v", payment.Customer.Email)
	}
	if payment.Notes["respCode"] != "01" {
		t.Fatalf("resp code not captured: %v", payment.Notes)
	}
}

func TestPaytmNormalizeNoOrderID(t *testing.T) {
	payment, err := Paytm{}.Normalize([]byte("STATUS=TXN_SUCCESS"))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if payment != nil {
		t.Fatalf("expected nil payment, got %+v", payment)
	}
}

func TestPaytmNormalizeFractionalPaise(t *testing.T) {
	form := url.Values{}
	form.Set("ORDERID", "ord_10")
	form.Set("TXNAMOUNT", "1.5")

	payment, err := Paytm{}.Normalize([]byte(form.Encode()))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if payment.Amount == nil || *payment.Amount != 150 {
		t.Fatalf("unexpected amount: %v", payment.Amount)
	}
}
