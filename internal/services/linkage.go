package services

import (
	"fmt"
	"strings"

	"github.com/draftmint/clausebind-backend/internal/domain"
	"github.com/draftmint/clausebind-backend/internal/platform/dbctx"
)

// resolveLinkage backfills parent/child references around a freshly bound
// placeholder. Both directions run retrospectively so bind order between a
// parent and its nested children does not matter:
//
//   - as a child: find an enclosing bound placeholder and fill the matching
//     unresolved option on the parent's question;
//   - as a parent: for every option of the new placeholder's question that
//     still carries a bare bracket key, find an already-bound child with
//     that key inside the new span.
func (s *bindingService) resolveLinkage(dbc dbctx.Context, fresh *domain.Placeholder) error {
	if err := s.resolveAsChild(dbc, fresh); err != nil {
		return err
	}
	return s.resolveAsParent(dbc, fresh)
}

func (s *bindingService) resolveAsChild(dbc dbctx.Context, fresh *domain.Placeholder) error {
	if fresh.PlaceholderKey == "" {
		return nil
	}
	parents, err := s.placeholderRepo.FindSpanContaining(dbc, fresh.DocumentID, fresh.SpanStart, fresh.SpanEnd)
	if err != nil {
		return fmt.Errorf("find enclosing placeholders: %w", err)
	}
	// Every enclosing parent with a matching unresolved option gets the
	// link, not just the innermost one.
	for _, parent := range parents {
		if !clausePathCompatible(parent.ClausePath, fresh.ClausePath) {
			continue
		}
		unresolved, err := s.optionRepo.GetUnresolvedByQuestionID(dbc, parent.QuestionID)
		if err != nil {
			return fmt.Errorf("load unresolved options: %w", err)
		}
		for _, opt := range unresolved {
			if opt.PlaceholderKey == nil || *opt.PlaceholderKey != fresh.PlaceholderKey {
				continue
			}
			if err := s.optionRepo.SetPlaceholderID(dbc, opt.ID, fresh.ID); err != nil {
				return fmt.Errorf("link option %s: %w", opt.ID, err)
			}
			s.log.Info("Linked placeholder into parent option",
				"placeholder_id", fresh.ID,
				"option_id", opt.ID,
				"parent_placeholder_id", parent.ID,
			)
			break
		}
	}
	return nil
}

func (s *bindingService) resolveAsParent(dbc dbctx.Context, fresh *domain.Placeholder) error {
	unresolved, err := s.optionRepo.GetUnresolvedByQuestionID(dbc, fresh.QuestionID)
	if err != nil {
		return fmt.Errorf("load unresolved options: %w", err)
	}
	for _, opt := range unresolved {
		if opt.PlaceholderKey == nil {
			continue
		}
		children, err := s.placeholderRepo.FindSpanWithinByKey(dbc, fresh.DocumentID, *opt.PlaceholderKey, fresh.SpanStart, fresh.SpanEnd)
		if err != nil {
			return fmt.Errorf("find nested placeholders: %w", err)
		}
		for _, child := range children {
			if child.ID == fresh.ID {
				continue
			}
			if !clausePathCompatible(fresh.ClausePath, child.ClausePath) {
				continue
			}
			if err := s.optionRepo.SetPlaceholderID(dbc, opt.ID, child.ID); err != nil {
				return fmt.Errorf("link option %s: %w", opt.ID, err)
			}
			s.log.Info("Linked nested placeholder into fresh parent",
				"parent_placeholder_id", fresh.ID,
				"option_id", opt.ID,
				"child_placeholder_id", child.ID,
			)
			break
		}
	}
	return nil
}

// clausePathCompatible reports whether a child at childPath may link to a
// parent at parentPath: same clause, or the parent sits on an ancestor
// segment of the child's dotted path.
func clausePathCompatible(parentPath, childPath string) bool {
	if parentPath == childPath {
		return true
	}
	return strings.HasPrefix(childPath, parentPath+".")
}
