package testutil

import (
	"github.com/google/uuid"
)

// Fixed UUIDs for deterministic testing
var (
	TestApplicantID = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	TestOtherUserID = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	TestAdminID     = uuid.MustParse("00000000-0000-0000-0000-000000000003")
	TestLoanID      = uuid.MustParse("00000000-0000-0000-0000-000000000100")
)
