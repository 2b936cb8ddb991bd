package todo

import "github.com/hitoshi/todoman/internal/model"

// applyReconciliation はstatusとcompletedの整合性ルールを適用する。
// todoには書き込みの値がすでに反映されており、prevStatusは書き込み前の
// ステータス、statusSet/completedSetはこの書き込みが各フィールドを
// 明示的に指定したかどうかを表す。
//
// 優先順位:
//  1. status = completed が明示された場合、completedをtrueに強制する。
//     （両フィールドが矛盾して指定されたときはこのルールが勝つ）
//  2. completed = true が明示された場合、statusをcompletedに強制する。
//  3. completed = false が明示され、書き込み前のstatusがcompletedだった
//     場合、statusをtodoにリセットする。ただし同じ書き込みが別の
//     非completedステータスを明示していればそちらを優先する。
//  4. 非completedのstatusが明示され、completedが明示されていない場合、
//     completedをfalseに強制する。
//
// このルールはcreate・full update・partial update・toggleのすべてに
// 同一に適用され、適用後は常に completed == true ⟺ status == completed が成り立つ。
func applyReconciliation(todo *model.Todo, prevStatus model.TodoStatus, statusSet, completedSet bool) {
	switch {
	case statusSet && todo.Status == model.StatusCompleted:
		todo.Completed = true

	case completedSet && todo.Completed:
		todo.Status = model.StatusCompleted

	case completedSet && !todo.Completed && prevStatus == model.StatusCompleted:
		// 明示された非completedステータスがあればそれを尊重し、
		// なければtodoへリセットする
		if !(statusSet && todo.Status != model.StatusCompleted) {
			todo.Status = model.StatusTodo
		}

	case statusSet && todo.Status != model.StatusCompleted && !completedSet:
		todo.Completed = false
	}
}
