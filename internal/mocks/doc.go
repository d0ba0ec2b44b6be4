// Package mocks provides centralized mock implementations for testing.
//
// Each mock is a struct with one function field per interface method. Tests
// set the fields they care about; unset fields fall back to a zero value or,
// for the store mocks, to a small in-memory implementation.
//
// Usage:
//
//	import "github.com/phrazzld/mastery-api/internal/mocks"
//
//	func TestSomething(t *testing.T) {
//	    practiceSvc := &mocks.MockPracticeService{
//	        GetScheduledWordsFn: func(ctx context.Context, learnerID uuid.UUID,
//	            textID int64, itemType domain.ItemType, limit int) (*practice.Composition, error) {
//	            return nil, service.ErrNothingToPractice
//	        },
//	    }
//
//	    // Use the mock in your test...
//	}
//
// When adding a new mock to this package:
//  1. Create a new file named after the interface being mocked
//  2. Implement the mock struct with function fields for each interface method
//  3. Add a compile-time assertion that the mock satisfies the interface
package mocks
