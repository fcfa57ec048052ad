package importer

import (
	"errors"
	"strings"
	"testing"

	"github.com/payoffplan/payoff/internal/model"
)

const header = "name,principal,current_balance,interest_rate,monthly_min_payment,first_due_date"

func TestImport_ValidRows(t *testing.T) {
	in := header + ",lender,extra_payment,loan_term_months\n" +
		"Car,\"12,000.00\",9000,6.5,250,2024-01-15,Credit Union,25,60\n" +
		"Card,$2500,2500,19.99%,75,2024-03-01,,,\n"

	res, err := Import(strings.NewReader(in), nil)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(res.Errors) != 0 {
		t.Fatalf("Errors = %v, want none", res.Errors)
	}
	if len(res.Loans) != 2 {
		t.Fatalf("len(Loans) = %d, want 2", len(res.Loans))
	}

	car := res.Loans[0]
	if car.Name != "Car" || car.Principal != 12000 || car.CurrentBalance != 9000 {
		t.Fatalf("car = %+v", car)
	}
	if car.Lender != "Credit Union" || car.ExtraPayment != 25 || car.LoanTermMonths != 60 {
		t.Fatalf("car optional fields = %+v", car)
	}
	if got := model.FormatDate(car.FirstDueDate); got != "2024-01-15" {
		t.Fatalf("FirstDueDate = %s", got)
	}
	if res.Loans[1].InterestRate != 19.99 || res.Loans[1].Principal != 2500 {
		t.Fatalf("card = %+v", res.Loans[1])
	}
}

func TestImport_CollectsRowErrors(t *testing.T) {
	in := header + "\n" +
		"Good,1000,1000,5,50,2025-01-01\n" +
		"BadDate,1000,1000,5,50,01/02/2025\n" +
		"BadAmount,lots,1000,5,50,2025-01-01\n" +
		",1000,1000,5,50,2025-01-01\n" +
		"\n" +
		"AlsoGood,500,400,0,25,2025-02-01\n"

	res, err := Import(strings.NewReader(in), nil)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(res.Loans) != 2 || res.Loans[0].Name != "Good" || res.Loans[1].Name != "AlsoGood" {
		t.Fatalf("Loans = %+v", res.Loans)
	}

	want := []struct {
		line   int
		column string
	}{
		{3, "first_due_date"},
		{4, "principal"},
		{5, "name"},
	}
	if len(res.Errors) != len(want) {
		t.Fatalf("Errors = %v, want %d", res.Errors, len(want))
	}
	for i, w := range want {
		if res.Errors[i].Line != w.line || res.Errors[i].Column != w.column {
			t.Errorf("Errors[%d] = %v, want line %d column %s", i, res.Errors[i], w.line, w.column)
		}
	}

	var fe *model.FormatError
	if !errors.As(res.Errors[0], &fe) {
		t.Fatalf("date error %v does not wrap *model.FormatError", res.Errors[0])
	}
}

func TestImport_MissingColumn(t *testing.T) {
	in := "name,principal,current_balance,interest_rate,first_due_date\nCar,1,1,1,2025-01-01\n"
	_, err := Import(strings.NewReader(in), nil)
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("Import error = %v, want ErrMissingColumn", err)
	}
	if !strings.Contains(err.Error(), "monthly_min_payment") {
		t.Fatalf("error %q does not name the column", err)
	}
}

func TestImport_HeaderCaseAndOrder(t *testing.T) {
	in := "First_Due_Date,Monthly_Min_Payment,Interest_Rate,Current_Balance,Principal,Name\n" +
		"2025-01-01,50,3.25,800,1000,Loan\n"
	res, err := Import(strings.NewReader(in), nil)
	if err != nil || len(res.Loans) != 1 {
		t.Fatalf("Import = %+v, %v", res, err)
	}
	if res.Loans[0].InterestRate != 3.25 || res.Loans[0].CurrentBalance != 800 {
		t.Fatalf("loan = %+v", res.Loans[0])
	}
}

func TestImport_Empty(t *testing.T) {
	if _, err := Import(strings.NewReader(""), nil); err == nil {
		t.Fatal("Import of empty input succeeded")
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"1,250.00", 1250, false},
		{"$300", 300, false},
		{" 99.999 ", 100, false},
		{"", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseAmount(%q) = %v, %v; want %v (err %v)", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
	if got, _ := ParseRate("4.375%"); got != 4.375 {
		t.Fatalf("ParseRate = %v, want 4.375", got)
	}
}

func FuzzImport(f *testing.F) {
	f.Add(header + "\nCar,1000,900,5,50,2025-01-01\n")
	f.Add(header + "\n\"unterminated,1,1,1,1,2025-01-01\n")
	f.Add("name\n")
	f.Fuzz(func(t *testing.T, in string) {
		res, err := Import(strings.NewReader(in), nil)
		if err != nil {
			return
		}
		for _, l := range res.Loans {
			if l.Name == "" || l.CurrentBalance < 0 {
				t.Fatalf("accepted invalid loan %+v", l)
			}
		}
	})
}
