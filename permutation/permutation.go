// Package permutation решает задачу оптимального сопоставления столбцов:
// какой перестановкой слотов спикеров candidate лучше всего ложится
// на reference. Снимает неоднозначность произвольного порядка слотов
// перед расчётом потерь
package permutation

import "fmt"

// Solver реализация через полный перебор перестановок. Число слотов —
// это бюджет спикеров задачи, он мал по построению, поэтому факториальный
// перебор дешевле и надёжнее венгерского алгоритма
type Solver struct{}

// Permutate см. функцию Permutate
func (Solver) Permutate(reference, candidate [][]float64, weight []float64) ([][]float64, []int) {
	return Permutate(reference, candidate, weight)
}

// Permutate возвращает перестановку столбцов candidate, минимизирующую
// взвешенную по фреймам квадратичную ошибку относительно reference
// (weight может быть nil — все фреймы равнозначны), и саму перестановку:
// result[f][s] = candidate[f][perm[s]].
// reference и candidate имеют форму frames × speakers; несовпадение форм —
// нарушение контракта и приводит к панике
func Permutate(reference, candidate [][]float64, weight []float64) ([][]float64, []int) {
	numFrames := len(reference)
	if len(candidate) != numFrames {
		panic(fmt.Sprintf("permutation: %d reference frames vs %d candidate frames", numFrames, len(candidate)))
	}
	if weight != nil && len(weight) != numFrames {
		panic(fmt.Sprintf("permutation: %d frames vs %d weights", numFrames, len(weight)))
	}
	if numFrames == 0 {
		return nil, nil
	}
	numSpeakers := len(reference[0])
	if len(candidate[0]) != numSpeakers {
		panic(fmt.Sprintf("permutation: %d reference speakers vs %d candidate speakers",
			numSpeakers, len(candidate[0])))
	}

	// Матрица попарных стоимостей: cost[r][c] = взвешенная квадратичная
	// ошибка между столбцом r reference и столбцом c candidate
	cost := make([][]float64, numSpeakers)
	for r := 0; r < numSpeakers; r++ {
		cost[r] = make([]float64, numSpeakers)
		for c := 0; c < numSpeakers; c++ {
			var sum float64
			for f := 0; f < numFrames; f++ {
				w := 1.0
				if weight != nil {
					w = weight[f]
				}
				d := reference[f][r] - candidate[f][c]
				sum += w * d * d
			}
			cost[r][c] = sum
		}
	}

	// Перебираем перестановки в лексикографическом порядке, первая
	// минимальная побеждает (детерминированно для фиксированного входа)
	best := make([]int, numSpeakers)
	bestCost := -1.0
	current := make([]int, 0, numSpeakers)
	used := make([]bool, numSpeakers)

	var search func(costSoFar float64)
	search = func(costSoFar float64) {
		if bestCost >= 0 && costSoFar >= bestCost {
			return
		}
		r := len(current)
		if r == numSpeakers {
			bestCost = costSoFar
			copy(best, current)
			return
		}
		for c := 0; c < numSpeakers; c++ {
			if used[c] {
				continue
			}
			used[c] = true
			current = append(current, c)
			search(costSoFar + cost[r][c])
			current = current[:len(current)-1]
			used[c] = false
		}
	}
	search(0)

	permutated := make([][]float64, numFrames)
	for f := 0; f < numFrames; f++ {
		permutated[f] = make([]float64, numSpeakers)
		for s, c := range best {
			permutated[f][s] = candidate[f][c]
		}
	}
	return permutated, best
}
