package dsp

// Matrix-based intra prediction: a small matrix-vector product between the
// reduced boundary vector and one 8-bit weight matrix per mode.

// mipMatrixMul computes outputSize^2 samples, each the dot product of the
// inputSize-element input with one weight row, biased by the input sum and
// the rounding offset, shifted by MipShiftMatrix and clipped to [0, maxVal].
// With transpose set the square result is stored transposed.
func mipMatrixMul(inputSize, outputSize int, res, input []Pel, weight []uint8, maxVal, inputOffset int, transpose bool) {
	in := input[:inputSize]
	sum := 0
	for _, v := range in {
		sum += int(v)
	}
	offset := (1 << (MipShiftMatrix - 1)) - MipOffsetMatrix*sum + (inputOffset << MipShiftMatrix)

	var buffer [64]Pel
	n := outputSize * outputSize
	mat := res[:n]
	if transpose {
		mat = buffer[:n]
	}

	for i := range mat {
		w := weight[i*inputSize : i*inputSize+inputSize]
		acc := 0
		for k, v := range in {
			acc += int(v) * int(w[k])
		}
		mat[i] = Pel(Clip3(0, maxVal, (acc+offset)>>MipShiftMatrix))
	}

	if transpose {
		for j := 0; j < outputSize; j++ {
			for i := 0; i < outputSize; i++ {
				res[j*outputSize+i] = buffer[i*outputSize+j]
			}
		}
	}
}

func mipMatrixMul4x4(res, input []Pel, weight []uint8, maxVal, inputOffset int, transpose bool) {
	mipMatrixMul(4, 4, res, input, weight, maxVal, inputOffset, transpose)
}

func mipMatrixMul8x4(res, input []Pel, weight []uint8, maxVal, inputOffset int, transpose bool) {
	mipMatrixMul(8, 4, res, input, weight, maxVal, inputOffset, transpose)
}

func mipMatrixMul8x8(res, input []Pel, weight []uint8, maxVal, inputOffset int, transpose bool) {
	mipMatrixMul(8, 8, res, input, weight, maxVal, inputOffset, transpose)
}
