// Package comments 评论点赞/点踩的乐观更新状态机
package comments

// Reaction 当前观看者对一条评论的态度，三者互斥
type Reaction int

const (
	None Reaction = iota
	Liked
	Disliked
)

func (r Reaction) String() string {
	switch r {
	case Liked:
		return "liked"
	case Disliked:
		return "disliked"
	default:
		return "none"
	}
}

// Action 用户操作
type Action int

const (
	Like Action = iota
	Dislike
)

func (a Action) String() string {
	if a == Dislike {
		return "dislike"
	}
	return "like"
}

// Entry 一条评论在本地的可见状态
type Entry struct {
	Reaction Reaction
	Likes    int
	Dislikes int
}

// Transition 一次状态迁移，Compensate 返回其逆迁移
type Transition struct {
	Action Action
	From   Entry
	To     Entry
}

// Toggle 计算操作后的状态，计数不低于 0
func Toggle(e Entry, a Action) Transition {
	next := e
	switch a {
	case Like:
		switch e.Reaction {
		case Liked:
			next.Reaction = None
			next.Likes = floor(e.Likes - 1)
		case Disliked:
			next.Reaction = Liked
			next.Likes = e.Likes + 1
			next.Dislikes = floor(e.Dislikes - 1)
		default:
			next.Reaction = Liked
			next.Likes = e.Likes + 1
		}
	case Dislike:
		switch e.Reaction {
		case Disliked:
			next.Reaction = None
			next.Dislikes = floor(e.Dislikes - 1)
		case Liked:
			next.Reaction = Disliked
			next.Dislikes = e.Dislikes + 1
			next.Likes = floor(e.Likes - 1)
		default:
			next.Reaction = Disliked
			next.Dislikes = e.Dislikes + 1
		}
	}
	return Transition{Action: a, From: e, To: next}
}

// Compensate 逆迁移，回到操作前的状态
func (t Transition) Compensate() Transition {
	return Transition{Action: t.Action, From: t.To, To: t.From}
}

// Changed 两个计数是否有变化
func (t Transition) Changed() (likes, dislikes bool) {
	return t.From.Likes != t.To.Likes, t.From.Dislikes != t.To.Dislikes
}

func floor(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
