package httpapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"relayhub/internal/httpapi"
	"relayhub/internal/httpapi/fake"
	"relayhub/internal/store"
)

var _ = Describe("AdminHandler", func() {
	var (
		hlr          *httpapi.AdminHandler
		fakeOperator *fake.OperatorStore
		fakeIssuer   *fake.JWTIssuer
		fakePolicies *fake.PolicyStore
		fakeReloader *fake.PolicyReloader
		w            *httptest.ResponseRecorder
	)

	BeforeEach(func() {
		fakeOperator = new(fake.OperatorStore)
		fakeIssuer = new(fake.JWTIssuer)
		fakePolicies = new(fake.PolicyStore)
		fakeReloader = new(fake.PolicyReloader)
		w = httptest.NewRecorder()
		auth := httpapi.NewAuthenticator(fakeOperator, fakeIssuer)
		hlr = httpapi.NewAdminHandler(zap.NewNop().Sugar(), auth, fakePolicies, fakeReloader)
	})

	Describe("HandleLogin", func() {
		When("the operator is unknown", func() {
			It("returns 401", func() {
				fakeOperator.GetOperatorByUsernameReturns(store.Operator{}, store.ErrNotFound)
				req := httptest.NewRequest("POST", "/admin/login", strings.NewReader(`{"username":"nope","password":"x"}`))

				hlr.HandleLogin(w, req)

				Expect(w.Code).To(Equal(http.StatusUnauthorized))
			})
		})

		When("the payload is missing required fields", func() {
			It("returns 400 without consulting the operator store", func() {
				req := httptest.NewRequest("POST", "/admin/login", strings.NewReader(`{"username":""}`))

				hlr.HandleLogin(w, req)

				Expect(w.Code).To(Equal(http.StatusBadRequest))
				Expect(fakeOperator.GetOperatorByUsernameCallCount()).To(Equal(0))
			})
		})
	})

	Describe("HandleCreate", func() {
		It("generates an id and defaults enabled to true", func() {
			req := httptest.NewRequest("POST", "/admin/policy-rules", strings.NewReader(`{"kind":"allowlist","target":"sepolia","value":"{\"addresses\":[\"0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa\"]}"}`))

			hlr.HandleCreate(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(fakePolicies.CreatePolicyRuleArgsForCall(0).ID).NotTo(BeEmpty())
			Expect(fakePolicies.CreatePolicyRuleArgsForCall(0).Enabled).To(BeTrue())
			var resp httpapi.Response
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		})

		When("the kind is not one of the four rule kinds", func() {
			It("returns 400", func() {
				req := httptest.NewRequest("POST", "/admin/policy-rules", strings.NewReader(`{"kind":"bogus","value":"{}"}`))

				hlr.HandleCreate(w, req)

				Expect(w.Code).To(Equal(http.StatusBadRequest))
			})
		})

		When("the value is structurally valid JSON but fails the kind's own schema", func() {
			It("returns 400 without persisting the rule", func() {
				req := httptest.NewRequest("POST", "/admin/policy-rules", strings.NewReader(`{"kind":"gas-cap","target":"sepolia","value":"{\"maxGasPrice\":\"not-a-number\"}"}`))

				hlr.HandleCreate(w, req)

				Expect(w.Code).To(Equal(http.StatusBadRequest))
				Expect(fakePolicies.CreatePolicyRuleCallCount()).To(Equal(0))
			})
		})
	})

	Describe("HandleUpdate", func() {
		It("rejects a schema-invalid value before updating", func() {
			req := httptest.NewRequest("PUT", "/admin/policy-rules/rule-1", strings.NewReader(`{"kind":"gas-cap","target":"sepolia","value":"{\"maxGasPrice\":\"not-a-number\"}"}`))
			req.SetPathValue("id", "rule-1")

			hlr.HandleUpdate(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(fakePolicies.UpdatePolicyRuleCallCount()).To(Equal(0))
		})
	})

	Describe("HandleReload", func() {
		It("signals the reloader", func() {
			req := httptest.NewRequest("POST", "/admin/policy-rules/reload", nil)

			hlr.HandleReload(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(fakeReloader.SignalCallCount()).To(Equal(1))
		})
	})
})
