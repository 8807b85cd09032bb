package oracle

import (
	"strings"
	"testing"

	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/core/domain"
)

const samplePackageBody = `PACKAGE BODY pay_pkg IS

PROCEDURE calc_salary(p_emp_id IN NUMBER) IS
  v_base NUMBER;
BEGIN
  SELECT base INTO v_base FROM salaries WHERE emp_id = p_emp_id;
  UPDATE employees SET salary = v_base * 1.1 WHERE emp_id = p_emp_id;
END calc_salary;

FUNCTION bonus_for(p_emp_id IN NUMBER) RETURN NUMBER IS
BEGIN
  RETURN 100;
END bonus_for;

END pay_pkg;
`

func TestSplitPackage(t *testing.T) {
	members := SplitPackage(samplePackageBody)
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d: %+v", len(members), members)
	}

	if members[0].Name != "CALC_SALARY" || members[0].Kind != domain.KindProcedure {
		t.Errorf("first member = %s/%s, want CALC_SALARY/procedure", members[0].Name, members[0].Kind)
	}
	if members[1].Name != "BONUS_FOR" || members[1].Kind != domain.KindFunction {
		t.Errorf("second member = %s/%s, want BONUS_FOR/function", members[1].Name, members[1].Kind)
	}

	for _, m := range members {
		if !strings.HasPrefix(m.Text, "CREATE OR REPLACE ") {
			t.Errorf("member %s text not wrapped: %q", m.Name, m.Text[:40])
		}
	}

	if !strings.Contains(members[0].Text, "END calc_salary;") {
		t.Errorf("procedure body truncated: %q", members[0].Text)
	}
	if strings.Contains(strings.ToUpper(members[1].Text), "END PAY_PKG") {
		t.Errorf("package terminator leaked into last member: %q", members[1].Text)
	}
}

func TestSplitPackage_SkipsNestedDeclarations(t *testing.T) {
	body := `PACKAGE BODY p IS

PROCEDURE outer_proc IS
    PROCEDURE inner_helper IS
    BEGIN
      NULL;
    END inner_helper;
BEGIN
  inner_helper;
END outer_proc;

END p;
`
	members := SplitPackage(body)
	if len(members) != 1 {
		t.Fatalf("expected 1 member, got %d: %+v", len(members), members)
	}
	if members[0].Name != "OUTER_PROC" {
		t.Errorf("member = %s, want OUTER_PROC", members[0].Name)
	}
	if !strings.Contains(members[0].Text, "inner_helper") {
		t.Error("nested declaration should stay inside its parent")
	}
}

func TestSplitPackage_Empty(t *testing.T) {
	if members := SplitPackage("PACKAGE BODY empty_pkg IS\nEND empty_pkg;"); len(members) != 0 {
		t.Errorf("expected no members, got %+v", members)
	}
}
